package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mdfview/internal/fileutil"
	"mdfview/internal/plot"
	"mdfview/internal/session"
)

func newPlotCommand(ctx *commandContext) *cobra.Command {
	var sel selectionFlags
	var secondary []string
	var mode string
	var decimation int
	var outPath string
	var width, height int

	cmd := &cobra.Command{
		Use:   "plot <file>",
		Short: "Render selected channels to a PNG figure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("width") {
				width = cfg.Plot.Width
			}
			if !cmd.Flags().Changed("height") {
				height = cfg.Plot.Height
			}
			return ctx.withSession(cmd, args[0], func(runCtx context.Context, sess *session.Session) error {
				if err := sel.apply(sess); err != nil {
					return err
				}
				if cmd.Flags().Changed("mode") {
					parsed, err := plot.ParseMode(mode)
					if err != nil {
						return err
					}
					sess.Settings.Mode = parsed
				}
				if cmd.Flags().Changed("decimation") {
					sess.Settings.Decimation = decimation
				}
				sess.SetSecondaryAxis(trimAll(secondary))

				spec, err := sess.Render(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if spec.Empty() {
					fmt.Fprintln(out, session.NoChannelsMessage)
					return nil
				}
				size, err := writePNG(outPath, spec, width, height)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Trace", "Points", "Axis"},
					traceRows(spec),
					[]columnAlignment{alignLeft, alignRight, alignLeft},
					fmt.Sprintf("%s mode, decimation %d", spec.Mode, max(sess.Settings.Decimation, 1)),
				))
				fmt.Fprintf(out, "Wrote %s (%s)\n", outPath, humanize.IBytes(uint64(size)))
				return nil
			})
		},
	}

	sel.register(cmd)
	cmd.Flags().StringSliceVar(&secondary, "secondary", nil, "Channel drawn on the secondary axis in overlay mode")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Layout: stack or overlay (defaults to plot.mode)")
	cmd.Flags().IntVarP(&decimation, "decimation", "d", 1, "Keep every n-th sample (defaults to plot.decimation)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "plot.png", "Output PNG path")
	cmd.Flags().IntVar(&width, "width", 0, "Image width in pixels (defaults to plot.width)")
	cmd.Flags().IntVar(&height, "height", 0, "Image height in pixels (defaults to plot.height)")
	return cmd
}

func writePNG(path string, spec plot.Spec, width, height int) (int64, error) {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return plot.RenderPNG(w, spec, width, height)
	})
}

func traceRows(spec plot.Spec) [][]string {
	var rows [][]string
	for _, trace := range spec.Traces() {
		axis := "primary"
		if trace.Secondary {
			axis = "secondary"
		}
		rows = append(rows, []string{trace.Label, strconv.Itoa(len(trace.X)), axis})
	}
	return rows
}
