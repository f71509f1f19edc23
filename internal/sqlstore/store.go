package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"mdfview/internal/measure"
)

// Suffixes are the file suffixes opened by this package.
var Suffixes = []string{".sqlite", ".db"}

func init() {
	for _, suffix := range Suffixes {
		measure.Register(suffix, func(ctx context.Context, path string) (measure.Store, error) {
			return Open(ctx, path)
		})
	}
}

// Store is a measurement backed by a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

var _ measure.Store = (*Store)(nil)

// Stats summarises store contents.
type Stats struct {
	Channels int64
	Samples  int64
	Frames   int64
}

// Open connects to an existing store file.
func Open(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat store: %w", err)
	}
	return openFile(ctx, path, false)
}

// Create initialises a new store file at path. It refuses to overwrite an
// existing file.
func Create(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("create store: %s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return openFile(ctx, path, true)
}

func openFile(ctx context.Context, path string, create bool) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx, create); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OpenMemory creates an empty private in-memory store.
func OpenMemory(ctx context.Context) (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory db: %w", err)
	}
	// Every pooled connection to :memory: would see its own database.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}
	store := &Store{db: db, path: ":memory:"}
	if err := store.initSchema(ctx, true); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the backing file, or ":memory:" for derived stores.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats counts channels, samples and raw frames.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT
        (SELECT COUNT(1) FROM channels),
        (SELECT COUNT(1) FROM samples),
        (SELECT COUNT(1) FROM can_frames)`).Scan(&st.Channels, &st.Samples, &st.Frames)
	if err != nil {
		return Stats{}, fmt.Errorf("store stats: %w", err)
	}
	return st, nil
}

// ListChannelNames returns every distinct channel name.
func (s *Store) ListChannelNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT name FROM channels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}
	return names, nil
}

type channelRow struct {
	id      int64
	name    string
	unit    string
	comment string
}

func (s *Store) lookupChannel(ctx context.Context, name string) (channelRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, unit, comment FROM channels WHERE name = ? ORDER BY id`, name)
	if err != nil {
		return channelRow{}, fmt.Errorf("lookup channel %q: %w", name, err)
	}
	defer rows.Close()

	var matches []channelRow
	for rows.Next() {
		var ch channelRow
		if err := rows.Scan(&ch.id, &ch.name, &ch.unit, &ch.comment); err != nil {
			return channelRow{}, fmt.Errorf("scan channel %q: %w", name, err)
		}
		matches = append(matches, ch)
	}
	if err := rows.Err(); err != nil {
		return channelRow{}, fmt.Errorf("lookup channel %q: %w", name, err)
	}
	switch len(matches) {
	case 0:
		return channelRow{}, fmt.Errorf("channel %q not found", name)
	case 1:
		return matches[0], nil
	default:
		return channelRow{}, fmt.Errorf("channel %q is ambiguous (%d occurrences)", name, len(matches))
	}
}

func (s *Store) allChannels(ctx context.Context) ([]channelRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, unit, comment FROM channels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()
	var out []channelRow
	for rows.Next() {
		var ch channelRow
		if err := rows.Scan(&ch.id, &ch.name, &ch.unit, &ch.comment); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// loadSamples reads the samples of channel id with start <= t <= stop.
func (s *Store) loadSamples(ctx context.Context, id int64, start, stop float64) ([]float64, []float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t, value FROM samples WHERE channel_id = ? AND t >= ? AND t <= ? ORDER BY t`,
		id, start, stop)
	if err != nil {
		return nil, nil, fmt.Errorf("load samples: %w", err)
	}
	defer rows.Close()

	ts := []float64{}
	vs := []float64{}
	for rows.Next() {
		var t, v float64
		if err := rows.Scan(&t, &v); err != nil {
			return nil, nil, fmt.Errorf("scan sample: %w", err)
		}
		ts = append(ts, t)
		vs = append(vs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate samples: %w", err)
	}
	return ts, vs, nil
}

// SelectSignals resolves every name before loading any samples, so a single
// missing or ambiguous name fails the whole batch.
func (s *Store) SelectSignals(ctx context.Context, names []string) ([]measure.Signal, error) {
	channels := make([]channelRow, 0, len(names))
	for _, name := range names {
		ch, err := s.lookupChannel(ctx, name)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}

	out := make([]measure.Signal, 0, len(channels))
	for _, ch := range channels {
		ts, vs, err := s.loadSamples(ctx, ch.id, negInf, posInf)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", ch.name, err)
		}
		out = append(out, measure.Signal{
			Name:       ch.name,
			Unit:       ch.unit,
			Comment:    ch.comment,
			Timestamps: ts,
			Samples:    vs,
		})
	}
	return out, nil
}
