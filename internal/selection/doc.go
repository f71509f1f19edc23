// Package selection holds the staged/hidden/shown channel state of a session.
//
// State is an immutable value: every mutator returns a new State and leaves
// the receiver untouched. Only staged and hidden are stored; shown is always
// derived as staged minus hidden, in stage order. Every mutator re-establishes
// hidden ⊆ staged, silently dropping hidden entries for channels that are no
// longer staged. Newly staged channels are shown immediately.
//
// Callers must re-query Shown after any mutator.
package selection
