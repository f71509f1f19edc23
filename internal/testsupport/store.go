package testsupport

import (
	"context"
	"fmt"
	"os"
	"slices"

	"mdfview/internal/measure"
)

// ExportCall records one FakeStore.Export invocation.
type ExportCall struct {
	Format  measure.Format
	Path    string
	Options measure.ExportOptions
}

// FakeStore is an in-memory measure.Store that records every call.
type FakeStore struct {
	Signals map[string]measure.Signal

	ListErr   error
	SelectErr error
	CutErr    error
	TableErr  error
	ExportErr error
	DecodeErr error

	// ExportPayload is written to the export path when ExportErr is nil.
	ExportPayload []byte
	// Decoded is returned by DecodeBusLog when DecodeErr is nil.
	Decoded *FakeStore

	ListCalls   int
	SelectCalls [][]string
	CutCalls    [][2]float64
	TableCalls  int
	ExportCalls []ExportCall
	DecodeCalls [][]string
	// DecodeSawFiles reports whether every database path existed during the
	// most recent DecodeBusLog call.
	DecodeSawFiles bool

	Cuts   []*FakeStore
	Closed bool
}

var _ measure.Store = (*FakeStore)(nil)

// NewFakeStore builds a store holding the given signals.
func NewFakeStore(signals ...measure.Signal) *FakeStore {
	s := &FakeStore{Signals: make(map[string]measure.Signal, len(signals))}
	for _, sig := range signals {
		s.Signals[sig.Name] = sig
	}
	return s
}

// Ramp builds a signal of n samples spaced dt seconds apart whose value
// equals its index.
func Ramp(name, unit string, n int, dt float64) measure.Signal {
	sig := measure.Signal{Name: name, Unit: unit, Timestamps: make([]float64, n), Samples: make([]float64, n)}
	for i := range n {
		sig.Timestamps[i] = float64(i) * dt
		sig.Samples[i] = float64(i)
	}
	return sig
}

func (s *FakeStore) ListChannelNames(context.Context) ([]string, error) {
	s.ListCalls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	names := make([]string, 0, len(s.Signals))
	for name := range s.Signals {
		names = append(names, name)
	}
	return names, nil
}

func (s *FakeStore) SelectSignals(_ context.Context, names []string) ([]measure.Signal, error) {
	s.SelectCalls = append(s.SelectCalls, slices.Clone(names))
	if s.SelectErr != nil {
		return nil, s.SelectErr
	}
	out := make([]measure.Signal, 0, len(names))
	for _, name := range names {
		sig, ok := s.Signals[name]
		if !ok {
			return nil, fmt.Errorf("channel %q not found", name)
		}
		out = append(out, sig)
	}
	return out, nil
}

func (s *FakeStore) CutTimeRange(_ context.Context, start, stop float64) (measure.Store, error) {
	s.CutCalls = append(s.CutCalls, [2]float64{start, stop})
	if s.CutErr != nil {
		return nil, s.CutErr
	}
	cut := &FakeStore{Signals: make(map[string]measure.Signal, len(s.Signals)), TableErr: s.TableErr}
	for name, sig := range s.Signals {
		sliced := measure.Signal{Name: sig.Name, Unit: sig.Unit, Comment: sig.Comment}
		for i, ts := range sig.Timestamps {
			if ts >= start && ts <= stop {
				sliced.Timestamps = append(sliced.Timestamps, ts)
				sliced.Samples = append(sliced.Samples, sig.Samples[i])
			}
		}
		cut.Signals[name] = sliced
	}
	s.Cuts = append(s.Cuts, cut)
	return cut, nil
}

// ToTable samples each channel with a previous-value hold on the raster grid
// spanning the first channel's time range.
func (s *FakeStore) ToTable(_ context.Context, names []string, raster float64, zeroBasedTime bool) (*measure.Table, error) {
	s.TableCalls++
	if s.TableErr != nil {
		return nil, s.TableErr
	}
	table := &measure.Table{Columns: []string{"time"}, Units: []string{"s"}}
	if len(names) == 0 {
		return table, nil
	}
	signals := make([]measure.Signal, 0, len(names))
	for _, name := range names {
		sig, ok := s.Signals[name]
		if !ok {
			return nil, fmt.Errorf("channel %q not found", name)
		}
		signals = append(signals, sig)
		table.Columns = append(table.Columns, name)
		table.Units = append(table.Units, sig.Unit)
	}
	base := signals[0].Timestamps
	if len(base) == 0 {
		return table, nil
	}
	first, last := base[0], base[len(base)-1]
	for step := 0; ; step++ {
		t := first + float64(step)*raster
		if t > last+1e-9 {
			break
		}
		row := []float64{t}
		if zeroBasedTime {
			row[0] = t - first
		}
		for _, sig := range signals {
			row = append(row, hold(sig, t))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func hold(sig measure.Signal, t float64) float64 {
	value := 0.0
	for i, ts := range sig.Timestamps {
		if ts > t+1e-9 {
			break
		}
		value = sig.Samples[i]
	}
	return value
}

func (s *FakeStore) Export(_ context.Context, format measure.Format, path string, opts measure.ExportOptions) error {
	s.ExportCalls = append(s.ExportCalls, ExportCall{Format: format, Path: path, Options: opts})
	if s.ExportErr != nil {
		return s.ExportErr
	}
	payload := s.ExportPayload
	if payload == nil {
		payload = []byte("time\n")
	}
	return os.WriteFile(path, payload, 0o644)
}

func (s *FakeStore) DecodeBusLog(_ context.Context, dbPaths []string) (measure.Store, error) {
	s.DecodeCalls = append(s.DecodeCalls, slices.Clone(dbPaths))
	s.DecodeSawFiles = true
	for _, p := range dbPaths {
		if _, err := os.Stat(p); err != nil {
			s.DecodeSawFiles = false
		}
	}
	if s.DecodeErr != nil {
		return nil, s.DecodeErr
	}
	if s.Decoded == nil {
		return NewFakeStore(), nil
	}
	return s.Decoded, nil
}

func (s *FakeStore) Close() error {
	s.Closed = true
	return nil
}
