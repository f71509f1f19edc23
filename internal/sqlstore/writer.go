package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"
)

// Full-range bounds for sample queries.
const (
	negInf = -math.MaxFloat64
	posInf = math.MaxFloat64
)

// writer batches inserts into one transaction.
type writer struct {
	tx      *sql.Tx
	channel *sql.Stmt
	sample  *sql.Stmt
	frame   *sql.Stmt
}

func (s *Store) beginWrite(ctx context.Context) (*writer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin write tx: %w", err)
	}
	w := &writer{tx: tx}
	prepare := func(query string) *sql.Stmt {
		if err != nil {
			return nil
		}
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx, query)
		return stmt
	}
	w.channel = prepare(`INSERT INTO channels (name, unit, comment) VALUES (?, ?, ?)`)
	w.sample = prepare(`INSERT INTO samples (channel_id, t, value) VALUES (?, ?, ?)`)
	w.frame = prepare(`INSERT INTO can_frames (t, bus, frame_id, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("prepare inserts: %w", err)
	}
	return w, nil
}

func (w *writer) addChannel(ctx context.Context, name, unit, comment string) (int64, error) {
	res, err := w.channel.ExecContext(ctx, name, unit, comment)
	if err != nil {
		return 0, fmt.Errorf("insert channel %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("channel id: %w", err)
	}
	return id, nil
}

// addSample stores one sample. Non-finite values are dropped because SQLite
// stores NaN as NULL.
func (w *writer) addSample(ctx context.Context, channelID int64, t, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	if _, err := w.sample.ExecContext(ctx, channelID, t, value); err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

func (w *writer) addFrame(ctx context.Context, f Frame) error {
	if _, err := w.frame.ExecContext(ctx, f.Time, f.Bus, int64(f.ID), f.Payload); err != nil {
		return fmt.Errorf("insert frame: %w", err)
	}
	return nil
}

func (w *writer) commit() error {
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("commit write tx: %w", err)
	}
	return nil
}

func (w *writer) rollback() {
	_ = w.tx.Rollback()
}
