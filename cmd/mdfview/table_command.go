package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mdfview/internal/fileutil"
	"mdfview/internal/measure"
	"mdfview/internal/session"
	"mdfview/internal/tabular"
)

func newTableCommand(ctx *commandContext) *cobra.Command {
	var sel selectionFlags
	var window tabular.Window
	var previewRows int
	var csvPath string

	cmd := &cobra.Command{
		Use:   "table <file>",
		Short: "Resample selected channels onto a fixed raster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("start") {
				window.Start = cfg.Table.Start
			}
			if !flags.Changed("stop") {
				window.Stop = cfg.Table.Stop
			}
			if !flags.Changed("raster") {
				window.Raster = cfg.Table.Raster
			}
			if !flags.Changed("rows") {
				previewRows = cfg.Table.PreviewRows
			}
			return ctx.withSession(cmd, args[0], func(runCtx context.Context, sess *session.Session) error {
				if err := sel.apply(sess); err != nil {
					return err
				}
				result := sess.Table(runCtx, window)
				out := cmd.OutOrStdout()
				switch result.State {
				case tabular.StateIdle:
					fmt.Fprintln(out, result.Message)
					return nil
				case tabular.StateFailed:
					return &cliError{msg: result.Message, err: result.Err}
				}

				fmt.Fprintln(out, renderTable(
					tableHeaders(result.Table),
					previewCells(result.Table, previewRows),
					rightAligned(len(result.Table.Columns), 0),
					result.Summary(),
				))
				if csvPath != "" {
					if err := writeTableCSV(csvPath, result.Table); err != nil {
						return err
					}
					fmt.Fprintf(out, "Wrote %s rows to %s\n", humanize.Comma(int64(result.Rows())), csvPath)
				}
				return nil
			})
		},
	}

	sel.register(cmd)
	def := tabular.DefaultWindow()
	cmd.Flags().Float64Var(&window.Start, "start", def.Start, "Window start in seconds")
	cmd.Flags().Float64Var(&window.Stop, "stop", def.Stop, "Window stop in seconds")
	cmd.Flags().Float64Var(&window.Raster, "raster", def.Raster, "Resampling interval in seconds")
	cmd.Flags().IntVarP(&previewRows, "rows", "n", 50, "Rows to print, 0 prints all (defaults to table.preview_rows)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Also write the full table to this CSV file")
	return cmd
}

func tableHeaders(t *measure.Table) []string {
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		if i < len(t.Units) && t.Units[i] != "" {
			col = fmt.Sprintf("%s [%s]", col, t.Units[i])
		}
		headers[i] = col
	}
	return headers
}

func previewCells(t *measure.Table, limit int) [][]string {
	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			cells[i][j] = formatValue(v)
		}
	}
	return cells
}

func writeTableCSV(path string, t *measure.Table) error {
	_, err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return encodeTableCSV(w, t)
	})
	return err
}

func encodeTableCSV(w io.Writer, t *measure.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeaders(t)); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
