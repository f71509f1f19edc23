package buslog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"mdfview/internal/logging"
	"mdfview/internal/measure"
	"mdfview/internal/services"
	"mdfview/internal/workspace"
)

// DatabaseFile is an uploaded network description.
type DatabaseFile struct {
	Name string
	Data []byte
}

// Suffix returns the lowercase file extension of the database.
func (f DatabaseFile) Suffix() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Source is the store surface needed for bus decoding.
type Source interface {
	DecodeBusLog(ctx context.Context, dbPaths []string) (measure.Store, error)
}

// Scratch persists database blobs as transient files.
type Scratch interface {
	Write(suffix string, data []byte) (*workspace.Artifact, error)
}

// Decoder runs bus-log extraction.
type Decoder struct {
	scratch Scratch
	logger  *slog.Logger
}

// New builds a decoder writing databases into scratch.
func New(scratch Scratch, logger *slog.Logger) *Decoder {
	return &Decoder{scratch: scratch, logger: logging.NewComponentLogger(logger, "buslog")}
}

// Decode extracts bus signals from store using databases. It fails with
// services.ErrNoDatabase when databases is empty and with services.ErrDecode
// when the store cannot decode. On failure store remains the caller's
// current store.
func (d *Decoder) Decode(ctx context.Context, store Source, databases []DatabaseFile) (measure.Store, error) {
	logger := logging.WithContext(ctx, d.logger)
	if len(databases) == 0 {
		return nil, services.Wrap(services.ErrNoDatabase, "buslog", "decode", "", nil)
	}
	for _, db := range databases {
		if !measure.IsDatabaseFile(db.Name) {
			return nil, services.Wrap(services.ErrDecode, "buslog", "validate", "",
				fmt.Errorf("unsupported database file %q (want one of %s)", db.Name, strings.Join(measure.DatabaseSuffixes, ", ")))
		}
	}

	paths := make([]string, 0, len(databases))
	var artifacts []*workspace.Artifact
	defer func() {
		for _, a := range artifacts {
			a.Release()
		}
	}()
	for _, db := range databases {
		artifact, err := d.scratch.Write(db.Suffix(), db.Data)
		if err != nil {
			return nil, services.Wrap(services.ErrDecode, "buslog", "persist database", db.Name, err)
		}
		artifacts = append(artifacts, artifact)
		paths = append(paths, artifact.Path)
	}

	decoded, err := store.DecodeBusLog(ctx, paths)
	if err != nil {
		logging.WarnWithContext(logger, "bus log extraction failed", "buslog_decode_failed",
			logging.Int("databases", len(databases)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the database matches the recorded bus"),
			logging.String(logging.FieldImpact, "current measurement kept"))
		return nil, services.Wrap(services.ErrDecode, "buslog", "decode", "", err)
	}

	names := make([]string, 0, len(databases))
	for _, db := range databases {
		names = append(names, db.Name)
	}
	logger.Info("bus log extracted", logging.Strings("databases", names))
	return decoded, nil
}
