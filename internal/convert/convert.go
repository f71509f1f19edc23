package convert

import (
	"context"
	"log/slog"
	"time"

	"mdfview/internal/logging"
	"mdfview/internal/measure"
	"mdfview/internal/services"
	"mdfview/internal/workspace"
)

// Exporter is the store surface needed for conversion.
type Exporter interface {
	Export(ctx context.Context, format measure.Format, path string, opts measure.ExportOptions) error
}

// Scratch provides transient files for the encoder to write into.
type Scratch interface {
	Create(suffix string) (*workspace.Artifact, error)
}

// Converter runs exports through a scratch area.
type Converter struct {
	scratch Scratch
	logger  *slog.Logger
	// beforeExport runs ahead of every export when set.
	beforeExport func(context.Context)
}

// New builds a converter writing into scratch.
func New(scratch Scratch, logger *slog.Logger) *Converter {
	c := &Converter{scratch: scratch, logger: logging.NewComponentLogger(logger, "convert")}
	if area, ok := scratch.(*workspace.Area); ok && area.Workspace() != nil {
		c.beforeExport = area.Workspace().EnsureFreeSpace
	}
	return c
}

// Options builds the encoder options for format. Compression is dropped for
// formats without a compression concept and when it is "none".
func Options(format measure.Format, compression measure.Compression) measure.ExportOptions {
	if !format.SupportsCompression() || compression == measure.CompressionNone || compression == "" {
		return measure.ExportOptions{}
	}
	return measure.ExportOptions{Compression: compression}
}

// FileName is the download name offered for a converted file.
func FileName(format measure.Format) string {
	return "export" + format.Extension()
}

// Convert exports store as format into a transient artifact, reads the
// artifact back and deletes it. The artifact is removed on every path.
// Encoder failures are classified as services.ErrConversion and never
// retried.
func (c *Converter) Convert(ctx context.Context, store Exporter, format measure.Format, compression measure.Compression) ([]byte, error) {
	logger := logging.WithContext(ctx, c.logger).With(logging.String("format", string(format)))

	if _, err := measure.ParseFormat(string(format)); err != nil {
		return nil, services.Wrap(services.ErrConversion, "convert", "validate", "", err)
	}
	if c.beforeExport != nil {
		c.beforeExport(ctx)
	}

	artifact, err := c.scratch.Create(format.Extension())
	if err != nil {
		return nil, services.Wrap(services.ErrConversion, "convert", "allocate artifact", "", err)
	}
	defer artifact.Release()

	opts := Options(format, compression)
	started := time.Now()
	if err := store.Export(ctx, format, artifact.Path, opts); err != nil {
		logging.WarnWithContext(logger, "export failed", "convert_export_failed",
			logging.String("compression", string(opts.Compression)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no file produced"))
		return nil, services.Wrap(services.ErrConversion, "convert", "export", "", err)
	}

	data, err := artifact.ReadAll()
	if err != nil {
		return nil, services.Wrap(services.ErrConversion, "convert", "read back", "", err)
	}
	logger.Info("conversion complete",
		logging.Int("bytes", len(data)),
		logging.String("compression", string(opts.Compression)),
		logging.Duration("elapsed", time.Since(started)))
	return data, nil
}
