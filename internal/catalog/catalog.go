package catalog

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"mdfview/internal/logging"
	"mdfview/internal/measure"
)

// DefaultSearchThreshold is the catalog size above which front ends should
// require a search filter before listing names.
const DefaultSearchThreshold = 1000

// Lister is the slice of the store the catalog needs.
type Lister interface {
	ListChannelNames(ctx context.Context) ([]string, error)
}

var _ Lister = measure.Store(nil)

type entry struct {
	key   string
	names []string
}

// Catalog caches the sorted, deduplicated channel names of one source file.
type Catalog struct {
	logger    *slog.Logger
	threshold int
	entry     *entry
	fold      cases.Caser
}

// New builds an empty catalog. A threshold <= 0 selects DefaultSearchThreshold.
func New(logger *slog.Logger, threshold int) *Catalog {
	if threshold <= 0 {
		threshold = DefaultSearchThreshold
	}
	return &Catalog{
		logger:    logging.NewComponentLogger(logger, "catalog"),
		threshold: threshold,
		fold:      cases.Fold(),
	}
}

// EnsureIndexed returns the catalog for sourceFileID, enumerating the store
// only when no entry exists for that key. The returned slice is shared; callers
// must not modify it.
func (c *Catalog) EnsureIndexed(ctx context.Context, store Lister, sourceFileID string) []string {
	if c.entry != nil && c.entry.key == sourceFileID {
		return c.entry.names
	}

	names, err := store.ListChannelNames(ctx)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "channel enumeration failed", "catalog_enumeration_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the measurement file is intact"),
			logging.String(logging.FieldImpact, "catalog treated as empty"))
		names = nil
	}

	indexed := normalize(names)
	c.entry = &entry{key: sourceFileID, names: indexed}
	c.logger.Debug("channel catalog rebuilt",
		logging.String(logging.FieldSourceFile, sourceFileID),
		logging.Int("channels", len(indexed)))
	return indexed
}

// Invalidate drops the cached entry so the next EnsureIndexed call re-enumerates.
func (c *Catalog) Invalidate() {
	if c.entry != nil {
		c.logger.Debug("channel catalog invalidated", logging.String(logging.FieldSourceFile, c.entry.key))
	}
	c.entry = nil
}

// Names returns the cached names, or nil when nothing is indexed.
func (c *Catalog) Names() []string {
	if c.entry == nil {
		return nil
	}
	return c.entry.names
}

// Key returns the source file identifier of the cached entry.
func (c *Catalog) Key() (string, bool) {
	if c.entry == nil {
		return "", false
	}
	return c.entry.key, true
}

// Large reports whether the catalog exceeds the search threshold.
func (c *Catalog) Large() bool {
	return len(c.Names()) > c.threshold
}

// Search returns the names containing query, compared with Unicode case
// folding. A blank query returns every name.
func (c *Catalog) Search(query string) []string {
	names := c.Names()
	query = strings.TrimSpace(query)
	if query == "" {
		return names
	}
	needle := c.fold.String(query)
	var out []string
	for _, name := range names {
		if strings.Contains(c.fold.String(name), needle) {
			out = append(out, name)
		}
	}
	return out
}

// Options returns the filtered names unioned with selected, sorted, so a
// current selection stays visible even when the filter would hide it.
func (c *Catalog) Options(query string, selected []string) []string {
	out := append([]string{}, c.Search(query)...)
	out = append(out, selected...)
	slices.Sort(out)
	return slices.Compact(out)
}

func normalize(names []string) []string {
	out := make([]string, 0, len(names))
	out = append(out, names...)
	slices.Sort(out)
	return slices.Compact(out)
}
