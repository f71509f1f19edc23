package sqlstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"mdfview/internal/measure"
)

// ErrUnsupportedFormat is returned by Export for formats other than CSV.
var ErrUnsupportedFormat = errors.New("export format not supported by sqlite store")

// Export writes every channel to path. Only CSV is supported; the file uses
// the ImportCSV layout with one row per distinct timestamp and empty cells
// where a channel has no sample. Compression does not apply to CSV and is
// ignored.
func (s *Store) Export(ctx context.Context, format measure.Format, path string, _ measure.ExportOptions) error {
	if format != measure.FormatCSV {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	channels, err := s.allChannels(ctx)
	if err != nil {
		return err
	}

	type series struct {
		ts, vs []float64
	}
	data := make([]series, len(channels))
	var times []float64
	for i, ch := range channels {
		ts, vs, err := s.loadSamples(ctx, ch.id, negInf, posInf)
		if err != nil {
			return fmt.Errorf("export channel %q: %w", ch.name, err)
		}
		data[i] = series{ts: ts, vs: vs}
		times = append(times, ts...)
	}
	slices.Sort(times)
	times = slices.Compact(times)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, 0, len(channels)+1)
	header = append(header, "time")
	for _, ch := range channels {
		header = append(header, columnName(ch.name, ch.unit))
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cursor := make([]int, len(channels))
	record := make([]string, len(channels)+1)
	for _, t := range times {
		record[0] = formatFloat(t)
		for i := range channels {
			record[i+1] = ""
			d := data[i]
			if c := cursor[i]; c < len(d.ts) && d.ts[c] == t {
				record[i+1] = formatFloat(d.vs[c])
				cursor[i]++
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return f.Close()
}

func columnName(name, unit string) string {
	if unit == "" {
		return name
	}
	return name + "[" + unit + "]"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
