package sqlstore

import (
	"context"
	"fmt"
	"math"
	"sort"

	"mdfview/internal/measure"
)

// maxTableRows bounds the raster grid so a tiny raster cannot exhaust
// memory.
const maxTableRows = 5_000_000

// ToTable resamples names onto a common raster spanning the union of their
// time ranges. Values between samples are linearly interpolated; outside a
// channel's range the nearest edge sample is held. Channels without samples
// produce NaN.
func (s *Store) ToTable(ctx context.Context, names []string, raster float64, zeroBasedTime bool) (*measure.Table, error) {
	if raster <= 0 || math.IsNaN(raster) {
		return nil, fmt.Errorf("raster %g must be positive", raster)
	}
	signals, err := s.SelectSignals(ctx, names)
	if err != nil {
		return nil, err
	}

	table := &measure.Table{Columns: []string{"time"}, Units: []string{"s"}}
	first, last := math.Inf(1), math.Inf(-1)
	for _, sig := range signals {
		table.Columns = append(table.Columns, sig.Name)
		table.Units = append(table.Units, sig.Unit)
		if n := len(sig.Timestamps); n > 0 {
			first = math.Min(first, sig.Timestamps[0])
			last = math.Max(last, sig.Timestamps[n-1])
		}
	}
	if math.IsInf(first, 1) {
		return table, nil
	}

	n := math.Floor((last-first)/raster+1e-9) + 1
	if math.IsNaN(n) || math.IsInf(n, 0) || n > maxTableRows {
		return nil, fmt.Errorf("raster %g yields %g rows (limit %d)", raster, n, maxTableRows)
	}
	steps := int(n)
	table.Rows = make([][]float64, 0, steps)
	for k := range steps {
		t := first + float64(k)*raster
		row := make([]float64, 0, len(signals)+1)
		if zeroBasedTime {
			row = append(row, t-first)
		} else {
			row = append(row, t)
		}
		for _, sig := range signals {
			row = append(row, interpolate(sig.Timestamps, sig.Samples, t))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// interpolate evaluates the piecewise-linear curve through (ts, vs) at t.
func interpolate(ts, vs []float64, t float64) float64 {
	n := len(ts)
	switch {
	case n == 0:
		return math.NaN()
	case t <= ts[0]:
		return vs[0]
	case t >= ts[n-1]:
		return vs[n-1]
	}
	i := sort.SearchFloat64s(ts, t)
	if ts[i] == t {
		return vs[i]
	}
	t0, t1 := ts[i-1], ts[i]
	if t1 == t0 {
		return vs[i]
	}
	frac := (t - t0) / (t1 - t0)
	return vs[i-1] + frac*(vs[i]-vs[i-1])
}
