// Package main hosts the mdfview CLI entrypoint and command graph.
//
// Commands open one measurement per invocation, run a single pipeline pass
// through internal/session and print the result: channel listings, PNG
// plots, resampled table previews, format conversions and bus-log decoding.
// Configuration resolution and logger setup are centralised in the command
// context so subcommands only describe their flags and output.
package main
