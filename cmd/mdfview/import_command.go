package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mdfview/internal/sqlstore"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var framesPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "import <signals.csv> <store.sqlite>",
		Short: "Build a measurement store from CSV exports",
		Long: "Build a measurement store from CSV exports.\n\n" +
			"The signal file header is \"time,<name> [<unit>],...\". The optional frames\n" +
			"file holds raw bus traffic with the header \"time,bus,id,data\" (hex payload).",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			if _, err := os.Stat(dst); err == nil {
				if !overwrite {
					return fmt.Errorf("store already exists at %s (use --overwrite to replace it)", dst)
				}
				if err := os.Remove(dst); err != nil {
					return fmt.Errorf("remove existing store: %w", err)
				}
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check store path: %w", err)
			}

			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			in, err := os.Open(src)
			if err != nil {
				return fmt.Errorf("open %s: %w", src, err)
			}
			defer in.Close()

			store, err := sqlstore.ImportCSV(runCtx, in, dst)
			if err != nil {
				return err
			}
			defer store.Close()

			if framesPath != "" {
				frames, err := os.Open(framesPath)
				if err != nil {
					return fmt.Errorf("open %s: %w", framesPath, err)
				}
				defer frames.Close()
				if _, err := store.ImportFramesCSV(runCtx, frames); err != nil {
					return err
				}
			}

			stats, err := store.Stats(runCtx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Channels", "Samples", "Frames"},
				[][]string{{
					humanize.Comma(stats.Channels),
					humanize.Comma(stats.Samples),
					humanize.Comma(stats.Frames),
				}},
				rightAligned(3, 0),
				"",
			))
			fmt.Fprintf(out, "Wrote %s\n", dst)
			return nil
		},
	}

	cmd.Flags().StringVar(&framesPath, "frames", "", "CSV file with raw bus frames")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing store")
	return cmd
}
