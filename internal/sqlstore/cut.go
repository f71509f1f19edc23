package sqlstore

import (
	"context"
	"fmt"

	"mdfview/internal/measure"
)

// CutTimeRange copies channels, samples and frames with start <= t <= stop
// into a new in-memory store. Channels without samples in the window are
// kept so names stay resolvable.
func (s *Store) CutTimeRange(ctx context.Context, start, stop float64) (measure.Store, error) {
	if start > stop {
		return nil, fmt.Errorf("cut: start %g after stop %g", start, stop)
	}
	channels, err := s.allChannels(ctx)
	if err != nil {
		return nil, err
	}
	frames, err := s.loadFrames(ctx, start, stop)
	if err != nil {
		return nil, err
	}

	cut, err := OpenMemory(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.copyWindow(ctx, cut, channels, frames, start, stop); err != nil {
		_ = cut.Close()
		return nil, err
	}
	return cut, nil
}

func (s *Store) copyWindow(ctx context.Context, dst *Store, channels []channelRow, frames []Frame, start, stop float64) error {
	w, err := dst.beginWrite(ctx)
	if err != nil {
		return err
	}
	defer w.rollback()

	for _, ch := range channels {
		ts, vs, err := s.loadSamples(ctx, ch.id, start, stop)
		if err != nil {
			return fmt.Errorf("cut channel %q: %w", ch.name, err)
		}
		id, err := w.addChannel(ctx, ch.name, ch.unit, ch.comment)
		if err != nil {
			return err
		}
		for i := range ts {
			if err := w.addSample(ctx, id, ts[i], vs[i]); err != nil {
				return err
			}
		}
	}
	for _, f := range frames {
		if err := w.addFrame(ctx, f); err != nil {
			return err
		}
	}
	return w.commit()
}
