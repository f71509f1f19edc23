package measure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"mdfview/internal/services"
)

var (
	// MeasurementSuffixes are the accepted measurement upload suffixes.
	MeasurementSuffixes = []string{".mf4", ".mdf", ".dat"}
	// DatabaseSuffixes are the accepted bus database suffixes.
	DatabaseSuffixes = []string{".dbc", ".arxml", ".xml"}
)

// Opener loads a store from a file path.
type Opener func(ctx context.Context, path string) (Store, error)

var (
	openersMu sync.RWMutex
	openers   = map[string]Opener{}
)

// Register installs an opener for a file suffix (for example ".sqlite").
// Registering the same suffix twice replaces the earlier opener.
func Register(suffix string, opener Opener) {
	suffix = normalizeSuffix(suffix)
	if suffix == "" || opener == nil {
		panic("measure: Register requires a suffix and opener")
	}
	openersMu.Lock()
	defer openersMu.Unlock()
	openers[suffix] = opener
}

// AcceptedSuffixes returns the measurement suffixes plus every registered
// suffix, sorted and deduplicated.
func AcceptedSuffixes() []string {
	openersMu.RLock()
	defer openersMu.RUnlock()
	out := append([]string{}, MeasurementSuffixes...)
	for suffix := range openers {
		out = append(out, suffix)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// IsDatabaseFile reports whether name carries a bus database suffix.
func IsDatabaseFile(name string) bool {
	return slices.Contains(DatabaseSuffixes, normalizeSuffix(filepath.Ext(name)))
}

// Open loads path with the opener registered for its suffix.
func Open(ctx context.Context, path string) (Store, error) {
	suffix := normalizeSuffix(filepath.Ext(path))
	if !slices.Contains(AcceptedSuffixes(), suffix) {
		return nil, services.Wrap(services.ErrLoad, "measure", "open",
			fmt.Sprintf("unsupported file type %q", suffix), nil)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, services.Wrap(services.ErrLoad, "measure", "open", "file unreadable", err)
	}

	openersMu.RLock()
	opener, ok := openers[suffix]
	openersMu.RUnlock()
	if !ok {
		return nil, services.Wrap(services.ErrLoad, "measure", "open",
			fmt.Sprintf("no decoder registered for %s files", suffix), nil)
	}

	store, err := opener(ctx, path)
	if err != nil {
		return nil, services.Wrap(services.ErrLoad, "measure", "open", filepath.Base(path), err)
	}
	return store, nil
}

func normalizeSuffix(suffix string) string {
	suffix = strings.ToLower(strings.TrimSpace(suffix))
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	return suffix
}
