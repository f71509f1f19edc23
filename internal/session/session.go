package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"mdfview/internal/buslog"
	"mdfview/internal/catalog"
	"mdfview/internal/config"
	"mdfview/internal/convert"
	"mdfview/internal/extract"
	"mdfview/internal/logging"
	"mdfview/internal/measure"
	"mdfview/internal/plot"
	"mdfview/internal/selection"
	"mdfview/internal/services"
	"mdfview/internal/tabular"
	"mdfview/internal/workspace"
)

// NoChannelsMessage is shown when a view needs channels and none are shown.
const NoChannelsMessage = "Please select channels first."

// Session is the state of one loaded measurement.
type Session struct {
	ID           string
	SourceFileID string
	Store        measure.Store
	Catalog      *catalog.Catalog
	Selection    selection.State
	Settings     plot.Settings

	logger     *slog.Logger
	area       *workspace.Area
	extractor  *extract.Extractor
	tables     *tabular.Exporter
	converter  *convert.Converter
	decoder    *buslog.Decoder
	baseID     string
	generation int
}

// Open loads the measurement at path and starts a session for it. Load
// failures are classified as services.ErrLoad.
func Open(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger) (*Session, error) {
	sourceID, err := sourceFileID(path)
	if err != nil {
		return nil, services.Wrap(services.ErrLoad, "session", "open", "file unreadable", err)
	}
	store, err := measure.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, cfg, store, sourceID, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return s, nil
}

// New starts a session around an already opened store. The session takes
// ownership of store.
func New(ctx context.Context, cfg *config.Config, store measure.Store, sourceFileID string, logger *slog.Logger) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("session: nil config")
	}
	if store == nil {
		return nil, errors.New("session: nil store")
	}
	id := uuid.NewString()
	sessionLogger := logging.NewComponentLogger(logging.WithSession(logger, id), "session")

	ws := workspace.FromConfig(cfg, logger)
	if err := ws.Check(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "session", "workspace", "", err)
	}
	area, err := ws.Acquire(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "session", "workspace", "", err)
	}

	mode, err := plot.ParseMode(cfg.Plot.Mode)
	if err != nil {
		mode = plot.ModeStack
	}
	base := logging.WithSession(logger, id)
	s := &Session{
		ID:           id,
		SourceFileID: sourceFileID,
		Store:        store,
		Catalog:      catalog.New(base, cfg.Catalog.SearchThreshold),
		Selection:    selection.New(),
		Settings:     plot.Settings{Mode: mode, Decimation: max(cfg.Plot.Decimation, 1)},
		logger:       sessionLogger,
		area:         area,
		extractor:    extract.New(base),
		tables:       tabular.New(base),
		converter:    convert.New(area, base),
		decoder:      buslog.New(area, base),
		baseID:       sourceFileID,
	}
	s.logger.InfoContext(s.Context(ctx), "session opened", logging.String(logging.FieldSourceFile, sourceFileID))
	return s, nil
}

// Context stamps the session id and source file on ctx for log correlation.
func (s *Session) Context(ctx context.Context) context.Context {
	ctx = services.WithSessionID(ctx, s.ID)
	return services.WithSourceFile(ctx, s.SourceFileID)
}

// Channels returns the catalog of the current store, enumerating it at most
// once per source file.
func (s *Session) Channels(ctx context.Context) []string {
	return s.Catalog.EnsureIndexed(s.Context(ctx), s.Store, s.SourceFileID)
}

// ChannelOptions returns the names offered for staging: the catalog filtered
// by query, plus everything already staged.
func (s *Session) ChannelOptions(ctx context.Context, query string) []string {
	s.Channels(ctx)
	return s.Catalog.Options(query, s.Selection.Staged())
}

// Stage marks name as a candidate; it is shown immediately.
func (s *Session) Stage(name string) {
	s.Selection = s.Selection.Stage(name)
}

// Unstage drops name from staged and hidden.
func (s *Session) Unstage(name string) {
	s.Selection = s.Selection.Unstage(name)
}

// ApplyStagedEdits replaces the staged list.
func (s *Session) ApplyStagedEdits(names []string) {
	s.Selection = s.Selection.ApplyStagedEdits(names)
}

// SetHidden replaces the hidden list; names that are not staged are ignored.
func (s *Session) SetHidden(names []string) {
	s.Selection = s.Selection.SetHidden(names)
}

// SetSecondaryAxis selects the channels drawn on the overlay secondary axis.
func (s *Session) SetSecondaryAxis(names []string) {
	s.Settings.SecondaryAxis = slices.Clone(names)
}

// effectiveSettings restricts the secondary axis to shown channels.
func (s *Session) effectiveSettings(shown []string) plot.Settings {
	settings := s.Settings
	settings.SecondaryAxis = nil
	for _, name := range s.Settings.SecondaryAxis {
		if slices.Contains(shown, name) {
			settings.SecondaryAxis = append(settings.SecondaryAxis, name)
		}
	}
	return settings
}

// Render runs one pipeline pass over the shown channels. Nothing shown
// yields an empty Spec. Extraction failures abandon the pass.
func (s *Session) Render(ctx context.Context) (plot.Spec, error) {
	ctx = services.WithStage(s.Context(ctx), "render")
	s.Channels(ctx)
	shown := s.Selection.Shown()
	if len(shown) == 0 {
		return plot.Spec{}, nil
	}
	settings := s.effectiveSettings(shown)
	signals, err := s.extractor.Extract(ctx, s.Store, shown, settings.Decimation)
	if err != nil {
		return plot.Spec{}, err
	}
	return plot.Build(signals, settings), nil
}

// Table builds a preview table of the shown channels.
func (s *Session) Table(ctx context.Context, window tabular.Window) tabular.Result {
	ctx = services.WithStage(s.Context(ctx), "table")
	names := s.Selection.Shown()
	if len(names) == 0 {
		return tabular.Result{State: tabular.StateIdle, Message: NoChannelsMessage}
	}
	return s.tables.Build(ctx, s.Store, names, window)
}

// Convert exports the whole store.
func (s *Session) Convert(ctx context.Context, format measure.Format, compression measure.Compression) ([]byte, error) {
	ctx = services.WithStage(s.Context(ctx), "convert")
	return s.converter.Convert(ctx, s.Store, format, compression)
}

// DecodeBusLog decodes raw bus traffic and, on success, makes the decoded
// store current. On failure the current store is kept.
func (s *Session) DecodeBusLog(ctx context.Context, databases []buslog.DatabaseFile) error {
	ctx = services.WithStage(s.Context(ctx), "buslog")
	decoded, err := s.decoder.Decode(ctx, s.Store, databases)
	if err != nil {
		return err
	}
	s.generation++
	s.ReplaceStore(ctx, decoded, fmt.Sprintf("%s#buslog-%d", s.baseID, s.generation))
	return nil
}

// ReplaceStore makes store current under a new source id. The previous
// store is closed, the catalog invalidated and the selection reset.
func (s *Session) ReplaceStore(ctx context.Context, store measure.Store, sourceFileID string) {
	previous := s.Store
	s.Store = store
	s.SourceFileID = sourceFileID
	s.Catalog.Invalidate()
	s.Selection = selection.New()
	s.Settings.SecondaryAxis = nil

	logger := logging.WithContext(s.Context(ctx), s.logger)
	if previous != nil && previous != store {
		if err := previous.Close(); err != nil {
			logging.WarnWithContext(logger, "closing replaced store failed", "session_store_close_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "previous measurement may hold resources until exit"))
		}
	}
	logger.Info("store replaced")
}

// Close releases the store and the workspace area.
func (s *Session) Close(ctx context.Context) error {
	var errs []error
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		s.Store = nil
	}
	if err := s.area.Close(s.Context(ctx)); err != nil {
		errs = append(errs, err)
	}
	s.logger.DebugContext(ctx, "session closed")
	return errors.Join(errs...)
}

// sourceFileID identifies a file by absolute path, size and modification
// time so a rewritten file gets a fresh catalog.
func sourceFileID(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s@%d:%d", abs, info.Size(), info.ModTime().UnixNano()), nil
}
