package sqlstore

import (
	"context"
	"fmt"
)

// Frame is one raw CAN frame.
type Frame struct {
	Time    float64
	Bus     int
	ID      uint32
	Payload []byte
}

// AppendFrames stores raw frames for later bus decoding.
func (s *Store) AppendFrames(ctx context.Context, frames []Frame) error {
	w, err := s.beginWrite(ctx)
	if err != nil {
		return err
	}
	defer w.rollback()
	for _, f := range frames {
		if err := w.addFrame(ctx, f); err != nil {
			return err
		}
	}
	return w.commit()
}

func (s *Store) loadFrames(ctx context.Context, start, stop float64) ([]Frame, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t, bus, frame_id, payload FROM can_frames WHERE t >= ? AND t <= ? ORDER BY t, rowid`,
		start, stop)
	if err != nil {
		return nil, fmt.Errorf("load frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var (
			f  Frame
			id int64
		)
		if err := rows.Scan(&f.Time, &f.Bus, &id, &f.Payload); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		f.ID = uint32(id)
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frames: %w", err)
	}
	return frames, nil
}
