package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"mdfview/internal/dbc"
	"mdfview/internal/measure"
)

// ErrNoFrames is returned when a store holds no raw bus frames to decode.
var ErrNoFrames = errors.New("measurement contains no bus frames")

// DecodeBusLog decodes the raw CAN frames against the given databases and
// returns a new in-memory store with one channel per database signal that
// occurred in the log. When databases define the same frame identifier the
// first one wins.
func (s *Store) DecodeBusLog(ctx context.Context, dbPaths []string) (measure.Store, error) {
	if len(dbPaths) == 0 {
		return nil, errors.New("no database files given")
	}
	merged := &dbc.Database{}
	for _, path := range dbPaths {
		db, err := dbc.ParseFile(path)
		if err != nil {
			return nil, err
		}
		merged.Merge(db)
	}

	frames, err := s.loadFrames(ctx, negInf, posInf)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	out, err := OpenMemory(ctx)
	if err != nil {
		return nil, err
	}
	matched, err := writeDecoded(ctx, out, merged, frames)
	if err == nil && matched == 0 {
		err = fmt.Errorf("none of %d frames matched the database messages", len(frames))
	}
	if err != nil {
		_ = out.Close()
		return nil, err
	}
	return out, nil
}

type signalKey struct {
	frameID uint32
	name    string
}

func writeDecoded(ctx context.Context, out *Store, db *dbc.Database, frames []Frame) (int, error) {
	w, err := out.beginWrite(ctx)
	if err != nil {
		return 0, err
	}
	defer w.rollback()

	channels := make(map[signalKey]int64)
	matched := 0
	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		msg, ok := db.Message(f.ID)
		if !ok {
			continue
		}
		matched++
		for _, sig := range msg.Signals {
			value, ok := sig.Decode(f.Payload)
			if !ok {
				continue
			}
			key := signalKey{frameID: msg.ID, name: sig.Name}
			id, seen := channels[key]
			if !seen {
				id, err = w.addChannel(ctx, sig.Name, sig.Unit, sig.Comment)
				if err != nil {
					return 0, err
				}
				channels[key] = id
			}
			if err := w.addSample(ctx, id, f.Time, value); err != nil {
				return 0, err
			}
		}
	}
	if err := w.commit(); err != nil {
		return 0, err
	}
	return matched, nil
}
