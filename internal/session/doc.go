// Package session is the explicit context object for one loaded measurement.
//
// A Session owns the store, the channel catalog, the selection snapshot and
// the plot settings, and threads them through the pipeline components. Each
// user interaction is one synchronous call: Render runs catalog lookup,
// selection, extraction and layout in a single pass. Replacing the store
// (after bus decoding) is an explicit transition that closes the old store,
// invalidates the catalog and resets the selection.
//
// Sessions are not safe for concurrent use. A workspace area lock keeps two
// processes from sharing scratch space.
package session
