package sqlstore

import (
	"context"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ImportCSV creates a store at dst from CSV text. The header is
// "time,<name>[<unit>],..."; the unit suffix is optional. Empty or
// non-finite cells are treated as missing samples. The returned store is
// open; a failed import removes dst.
func ImportCSV(ctx context.Context, r io.Reader, dst string) (_ *Store, err error) {
	store, err := Create(ctx, dst)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = store.Close()
			removeStoreFiles(dst)
		}
	}()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("import: empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("import: read header: %w", err)
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "time") {
		return nil, errors.New(`import: header must start with "time" followed by at least one channel`)
	}

	w, err := store.beginWrite(ctx)
	if err != nil {
		return nil, err
	}
	defer w.rollback()

	ids := make([]int64, len(header)-1)
	for i, col := range header[1:] {
		name, unit := splitColumn(col)
		if name == "" {
			return nil, fmt.Errorf("import: column %d has no name", i+2)
		}
		if ids[i], err = w.addChannel(ctx, name, unit, ""); err != nil {
			return nil, err
		}
	}

	line := 1
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		line++
		if readErr != nil {
			return nil, fmt.Errorf("import: line %d: %w", line, readErr)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("import: line %d: %d fields, header has %d", line, len(record), len(header))
		}
		t, perr := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if perr != nil {
			return nil, fmt.Errorf("import: line %d: time: %w", line, perr)
		}
		for i, cell := range record[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, perr := strconv.ParseFloat(cell, 64)
			if perr != nil {
				return nil, fmt.Errorf("import: line %d column %q: %w", line, header[i+1], perr)
			}
			if err = w.addSample(ctx, ids[i], t, v); err != nil {
				return nil, err
			}
		}
	}
	if err = w.commit(); err != nil {
		return nil, err
	}
	return store, nil
}

// ImportFramesCSV appends raw CAN frames from CSV with the header
// "time,bus,id,data". Identifiers accept decimal or 0x-prefixed hex; data is
// hex without separators.
func (s *Store) ImportFramesCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("import frames: read header: %w", err)
	}
	if len(header) != 4 || !strings.EqualFold(header[0], "time") {
		return 0, errors.New(`import frames: header must be "time,bus,id,data"`)
	}

	var frames []Frame
	line := 1
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		line++
		if readErr != nil {
			return 0, fmt.Errorf("import frames: line %d: %w", line, readErr)
		}
		f, perr := parseFrame(record)
		if perr != nil {
			return 0, fmt.Errorf("import frames: line %d: %w", line, perr)
		}
		frames = append(frames, f)
	}
	if err := s.AppendFrames(ctx, frames); err != nil {
		return 0, err
	}
	return len(frames), nil
}

func parseFrame(record []string) (Frame, error) {
	var f Frame
	var err error
	if f.Time, err = strconv.ParseFloat(strings.TrimSpace(record[0]), 64); err != nil {
		return Frame{}, fmt.Errorf("time: %w", err)
	}
	if f.Bus, err = strconv.Atoi(strings.TrimSpace(record[1])); err != nil {
		return Frame{}, fmt.Errorf("bus: %w", err)
	}
	id, err := strconv.ParseUint(strings.TrimSpace(record[2]), 0, 32)
	if err != nil {
		return Frame{}, fmt.Errorf("id: %w", err)
	}
	f.ID = uint32(id)
	if f.Payload, err = hex.DecodeString(strings.TrimSpace(record[3])); err != nil {
		return Frame{}, fmt.Errorf("data: %w", err)
	}
	return f, nil
}

// splitColumn separates "Name[unit]" into its parts.
func splitColumn(col string) (name, unit string) {
	col = strings.TrimSpace(col)
	if strings.HasSuffix(col, "]") {
		if open := strings.LastIndex(col, "["); open > 0 {
			return strings.TrimSpace(col[:open]), strings.TrimSpace(col[open+1 : len(col)-1])
		}
	}
	return col, ""
}

func removeStoreFiles(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}
