// Package logs reads the mdfview log file for the `mdfview logs` command.
//
// Recent returns the last lines with bounded memory, optionally restricted to
// one session id. Follow polls the file from an offset and emits new lines
// until the context ends, restarting from the top when the file is truncated.
package logs
