// Package buslog decodes raw bus frames recorded in a measurement into
// physical signals using uploaded network databases (DBC, ARXML).
//
// Database blobs are written to transient files so the store can read them
// by path; the files are removed before Decode returns. A successful decode
// yields a new store. The caller decides whether to swap it in; the source
// store is never modified.
package buslog
