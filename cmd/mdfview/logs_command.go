package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mdfview/internal/logging"
	"mdfview/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent mdfview log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := logging.LogPath(cfg)
			if path == "" {
				return errors.New("no log directory configured; logs are written to stderr")
			}
			recent, offset, err := logs.Recent(path, lines, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range recent {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			return logs.Follow(runCtx, path, offset, filter, logs.DefaultPollInterval, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries until interrupted")
	cmd.Flags().StringVar(&filter.Session, "session", "", "Only show entries for this session id")
	cmd.Flags().StringVar(&filter.Contains, "grep", "", "Only show entries containing this text")
	return cmd
}
