package selection

import "slices"

// State is one snapshot of the channel selection.
type State struct {
	staged []string
	hidden []string
}

// New returns an empty selection.
func New() State {
	return State{}
}

// Single builds the single-list selection model: every name staged, nothing
// hidden.
func Single(names []string) State {
	return State{staged: dedupe(names)}
}

// Stage adds name to staged. It is a no-op when name is already staged.
func (s State) Stage(name string) State {
	if name == "" || slices.Contains(s.staged, name) {
		return s
	}
	return State{
		staged: append(slices.Clone(s.staged), name),
		hidden: slices.Clone(s.hidden),
	}
}

// Unstage removes name from staged and hidden in one step.
func (s State) Unstage(name string) State {
	return State{
		staged: without(s.staged, name),
		hidden: without(s.hidden, name),
	}
}

// ApplyStagedEdits replaces staged with newStaged. Names dropped from staged
// are dropped from hidden; names that stay staged keep their hidden flag.
func (s State) ApplyStagedEdits(newStaged []string) State {
	staged := dedupe(newStaged)
	removed := Removed(s.staged, staged)
	hidden := make([]string, 0, len(s.hidden))
	for _, name := range s.hidden {
		if !slices.Contains(removed, name) && slices.Contains(staged, name) {
			hidden = append(hidden, name)
		}
	}
	return State{staged: staged, hidden: hidden}
}

// SetHidden replaces hidden with names ∩ staged. Names that are not staged
// are discarded.
func (s State) SetHidden(names []string) State {
	hidden := make([]string, 0, len(names))
	for _, name := range s.staged {
		if slices.Contains(names, name) {
			hidden = append(hidden, name)
		}
	}
	return State{staged: slices.Clone(s.staged), hidden: hidden}
}

// Hide adds one staged channel to hidden.
func (s State) Hide(name string) State {
	return s.SetHidden(append(slices.Clone(s.hidden), name))
}

// Unhide removes one channel from hidden.
func (s State) Unhide(name string) State {
	return s.SetHidden(without(s.hidden, name))
}

// Shown returns staged − hidden in stage order. It is computed on every call.
func (s State) Shown() []string {
	shown := make([]string, 0, len(s.staged))
	for _, name := range s.staged {
		if !slices.Contains(s.hidden, name) {
			shown = append(shown, name)
		}
	}
	return shown
}

// Staged returns a copy of the staged channels in stage order.
func (s State) Staged() []string {
	return slices.Clone(s.staged)
}

// Hidden returns a copy of the hidden channels in stage order.
func (s State) Hidden() []string {
	return slices.Clone(s.hidden)
}

func (s State) IsStaged(name string) bool {
	return slices.Contains(s.staged, name)
}

func (s State) IsHidden(name string) bool {
	return slices.Contains(s.hidden, name)
}

func (s State) IsShown(name string) bool {
	return s.IsStaged(name) && !s.IsHidden(name)
}

// Empty reports whether nothing is staged.
func (s State) Empty() bool {
	return len(s.staged) == 0
}

// Removed returns the names present in prev but absent from next, in prev order.
func Removed(prev, next []string) []string {
	var out []string
	for _, name := range prev {
		if !slices.Contains(next, name) {
			out = append(out, name)
		}
	}
	return out
}

func without(names []string, drop string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name != drop {
			out = append(out, name)
		}
	}
	return out
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
