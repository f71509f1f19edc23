// Package catalog indexes and caches the channel-name universe of the loaded
// measurement store.
//
// The cache holds exactly one entry keyed by the source file identifier. It is
// rebuilt when the key changes and explicitly invalidated when the session
// replaces its store (for example after bus-log decoding). Enumeration
// failures produce an empty catalog so a corrupt or unusual file never brings
// the session down.
package catalog
