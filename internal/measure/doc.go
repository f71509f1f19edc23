// Package measure defines the boundary between mdfview and the measurement
// file decoder that owns a loaded file.
//
// The Store interface is the only way pipeline components touch file
// contents: channel enumeration, batched signal selection, time-range slicing,
// tabular projection, export, and bus-log decoding. Concrete stores register
// an Opener per file suffix; Open dispatches on the suffix and classifies
// every failure as services.ErrLoad.
//
// The package also fixes the format-identity contracts for uploads and
// exports (accepted suffixes, output formats, compressions). Byte-level
// layout belongs to the store implementations.
package measure
