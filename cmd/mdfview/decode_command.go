package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"mdfview/internal/buslog"
	"mdfview/internal/fileutil"
	"mdfview/internal/measure"
	"mdfview/internal/session"
)

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	var dbPaths []string
	var outPath string

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode raw bus frames into physical signals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			databases, err := readDatabases(trimAll(dbPaths))
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, args[0], func(runCtx context.Context, sess *session.Session) error {
				if err := sess.DecodeBusLog(runCtx, databases); err != nil {
					return err
				}
				names := sess.Channels(runCtx)
				rows := make([][]string, len(names))
				for i, name := range names {
					rows[i] = []string{strconv.Itoa(i + 1), name}
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]string{"#", "Decoded signal"}, rows,
					[]columnAlignment{alignRight, alignLeft},
					fmt.Sprintf("%d signals from %d database(s)", len(names), len(databases))))
				if outPath == "" {
					return nil
				}
				data, err := sess.Convert(runCtx, measure.FormatCSV, measure.CompressionNone)
				if err != nil {
					return err
				}
				if err := fileutil.WriteFileAtomic(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				fmt.Fprintf(out, "Wrote %s\n", outPath)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&dbPaths, "db", nil, "Bus database file (repeatable)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write decoded signals as CSV to this path")
	return cmd
}

func readDatabases(paths []string) ([]buslog.DatabaseFile, error) {
	files := make([]buslog.DatabaseFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read database %s: %w", path, err)
		}
		files = append(files, buslog.DatabaseFile{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}
