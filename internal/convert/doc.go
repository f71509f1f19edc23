// Package convert serialises a measurement store to an external file format
// and hands the bytes back to the caller.
package convert
