package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mdfview/internal/convert"
	"mdfview/internal/fileutil"
	"mdfview/internal/measure"
	"mdfview/internal/session"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var formatFlag, compressionFlag, outPath string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Export a measurement to another file format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				formatFlag = cfg.Convert.Format
			}
			if !cmd.Flags().Changed("compression") {
				compressionFlag = cfg.Convert.Compression
			}
			format, err := measure.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			compression, err := measure.ParseCompression(compressionFlag)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = convert.FileName(format)
			}
			return ctx.withSession(cmd, args[0], func(runCtx context.Context, sess *session.Session) error {
				data, err := sess.Convert(runCtx, format, compression)
				if err != nil {
					return err
				}
				if err := fileutil.WriteFileAtomic(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %s)\n", outPath, format, humanize.IBytes(uint64(len(data))))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(measure.FormatCSV), "Output format: csv, parquet, hdf5, mat or mat73 (defaults to convert.format)")
	cmd.Flags().StringVar(&compressionFlag, "compression", string(measure.CompressionNone), "Compression codec: none, gzip, snappy or lz4 (defaults to convert.compression)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (defaults to export.<ext>)")
	return cmd
}
