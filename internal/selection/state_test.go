package selection_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"mdfview/internal/selection"
)

func TestStageAndHideDerivesShown(t *testing.T) {
	state := selection.New().
		ApplyStagedEdits([]string{"Speed", "RPM"}).
		SetHidden([]string{"RPM"})

	if got := state.Shown(); !slices.Equal(got, []string{"Speed"}) {
		t.Fatalf("unexpected shown: %v", got)
	}
	if got := state.Staged(); !slices.Equal(got, []string{"Speed", "RPM"}) {
		t.Fatalf("unexpected staged: %v", got)
	}
}

func TestUnstageHiddenChannelClearsBothTiers(t *testing.T) {
	state := selection.New().Stage("Speed").Stage("RPM").Hide("RPM")
	state = state.Unstage("RPM")

	if state.IsStaged("RPM") || state.IsHidden("RPM") {
		t.Fatalf("RPM should be gone from staged and hidden: staged=%v hidden=%v", state.Staged(), state.Hidden())
	}
	if slices.Contains(state.Shown(), "RPM") {
		t.Fatalf("RPM should not be shown: %v", state.Shown())
	}
}

func TestNewlyStagedChannelIsShown(t *testing.T) {
	state := selection.New().Stage("Speed").Hide("Speed").Stage("Torque")
	if !state.IsShown("Torque") {
		t.Fatalf("newly staged channel should be shown: %v", state.Shown())
	}

	edited := state.ApplyStagedEdits([]string{"Speed", "Torque", "RPM"})
	if !edited.IsShown("RPM") {
		t.Fatalf("channel added through edit should be shown: %v", edited.Shown())
	}
	if !edited.IsHidden("Speed") {
		t.Fatal("channel kept in staged should keep its hidden flag")
	}
}

func TestReStagingAfterUnstageIsShown(t *testing.T) {
	state := selection.New().Stage("Speed").Hide("Speed").Unstage("Speed").Stage("Speed")
	if !state.IsShown("Speed") {
		t.Fatalf("re-staged channel should be shown, hidden=%v", state.Hidden())
	}
}

func TestApplyStagedEditsDropsHiddenForRemoved(t *testing.T) {
	state := selection.New().ApplyStagedEdits([]string{"A", "B", "C"}).SetHidden([]string{"B", "C"})
	state = state.ApplyStagedEdits([]string{"A", "C", "A"})

	if got := state.Staged(); !slices.Equal(got, []string{"A", "C"}) {
		t.Fatalf("expected deduplicated staged, got %v", got)
	}
	if got := state.Hidden(); !slices.Equal(got, []string{"C"}) {
		t.Fatalf("expected B dropped from hidden, got %v", got)
	}
	if got := state.Shown(); !slices.Equal(got, []string{"A"}) {
		t.Fatalf("unexpected shown: %v", got)
	}
}

func TestSetHiddenDiscardsUnstagedNames(t *testing.T) {
	state := selection.New().Stage("A").SetHidden([]string{"A", "Ghost"})
	if got := state.Hidden(); !slices.Equal(got, []string{"A"}) {
		t.Fatalf("expected only staged names hidden, got %v", got)
	}
	if len(state.Shown()) != 0 {
		t.Fatalf("expected nothing shown, got %v", state.Shown())
	}
}

func TestMutatorsDoNotAlterReceiver(t *testing.T) {
	base := selection.New().Stage("A").Stage("B")
	_ = base.Hide("A")
	_ = base.Unstage("B")
	_ = base.ApplyStagedEdits(nil)

	if !slices.Equal(base.Staged(), []string{"A", "B"}) || len(base.Hidden()) != 0 {
		t.Fatalf("receiver mutated: staged=%v hidden=%v", base.Staged(), base.Hidden())
	}

	staged := base.Staged()
	staged[0] = "Z"
	if base.Staged()[0] != "A" {
		t.Fatal("Staged must return a copy")
	}
}

func TestSingleModelNeverHides(t *testing.T) {
	state := selection.Single([]string{"Speed", "RPM", "Speed"})
	if got := state.Shown(); !slices.Equal(got, []string{"Speed", "RPM"}) {
		t.Fatalf("unexpected shown: %v", got)
	}
	if len(state.Hidden()) != 0 {
		t.Fatalf("single model should not hide, got %v", state.Hidden())
	}
}

func TestRemoved(t *testing.T) {
	if got := selection.Removed([]string{"A", "B", "C"}, []string{"C", "D"}); !slices.Equal(got, []string{"A", "B"}) {
		t.Fatalf("unexpected removed: %v", got)
	}
}

// TestInvariantsHoldUnderRandomEdits drives random mutator sequences and
// checks hidden ⊆ staged and shown = staged − hidden after every step.
func TestInvariantsHoldUnderRandomEdits(t *testing.T) {
	universe := []string{"Speed", "RPM", "Torque", "Gear", "Brake", "Throttle"}
	rng := rand.New(rand.NewPCG(1, 2))
	pick := func() []string {
		var out []string
		for _, name := range universe {
			if rng.IntN(2) == 0 {
				out = append(out, name)
			}
		}
		return out
	}

	state := selection.New()
	for step := range 2000 {
		name := universe[rng.IntN(len(universe))]
		switch rng.IntN(6) {
		case 0:
			state = state.Stage(name)
		case 1:
			state = state.Unstage(name)
		case 2:
			state = state.ApplyStagedEdits(pick())
		case 3:
			state = state.SetHidden(pick())
		case 4:
			state = state.Hide(name)
		case 5:
			state = state.Unhide(name)
		}

		staged, hidden := state.Staged(), state.Hidden()
		for _, h := range hidden {
			if !slices.Contains(staged, h) {
				t.Fatalf("step %d: hidden %q not staged (staged=%v hidden=%v)", step, h, staged, hidden)
			}
		}
		var want []string
		for _, s := range staged {
			if !slices.Contains(hidden, s) {
				want = append(want, s)
			}
		}
		if got := state.Shown(); !slices.Equal(got, want) && !(len(got) == 0 && len(want) == 0) {
			t.Fatalf("step %d: shown=%v want %v", step, got, want)
		}
	}
}
