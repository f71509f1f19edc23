package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mdfview/internal/session"
)

// selectionFlags binds the channel selection shared by plot and table.
type selectionFlags struct {
	channels []string
	hidden   []string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.channels, "channel", "C", nil, "Channel to select (repeatable or comma separated)")
	cmd.Flags().StringSliceVar(&f.hidden, "hide", nil, "Selected channel to keep hidden")
}

// apply stages every requested channel and then hides the requested subset.
// Hidden names that were never staged are rejected.
func (f *selectionFlags) apply(sess *session.Session) error {
	sess.ApplyStagedEdits(trimAll(f.channels))
	hidden := trimAll(f.hidden)
	for _, name := range hidden {
		if !sess.Selection.IsStaged(name) {
			return fmt.Errorf("cannot hide %q: channel is not selected", name)
		}
	}
	sess.SetHidden(hidden)
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
