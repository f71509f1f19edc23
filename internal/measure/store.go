package measure

import "context"

// Signal is one channel as returned by a store: full-resolution arrays plus
// metadata. Timestamps are seconds relative to the measurement start.
type Signal struct {
	Name       string
	Unit       string
	Comment    string
	Timestamps []float64
	Samples    []float64
}

// Len reports the number of samples.
func (s Signal) Len() int {
	return len(s.Samples)
}

// Table is a row-oriented projection of channels onto a shared time base.
// Columns[0] is always the time column.
type Table struct {
	Columns []string
	Units   []string
	Rows    [][]float64
}

// Len reports the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ExportOptions carries encoder arguments. An empty Compression means the
// argument is omitted from the encoder call entirely.
type ExportOptions struct {
	Compression Compression
}

// Store is a loaded measurement file. Implementations own their backing
// storage; callers must Close stores they obtain from Open, CutTimeRange, or
// DecodeBusLog once they are done with them.
type Store interface {
	// ListChannelNames returns every channel name. It may be expensive and
	// callers are expected to cache the result.
	ListChannelNames(ctx context.Context) ([]string, error)
	// SelectSignals resolves all names in one call. It fails when any name is
	// missing or ambiguous.
	SelectSignals(ctx context.Context, names []string) ([]Signal, error)
	// CutTimeRange returns a new store bounded to [start, stop].
	CutTimeRange(ctx context.Context, start, stop float64) (Store, error)
	// ToTable resamples names onto a fixed raster.
	ToTable(ctx context.Context, names []string, raster float64, zeroBasedTime bool) (*Table, error)
	// Export writes the store contents to path in the given format.
	Export(ctx context.Context, format Format, path string, opts ExportOptions) error
	// DecodeBusLog decodes raw bus frames against database files and returns
	// a new store holding the physical signals.
	DecodeBusLog(ctx context.Context, dbPaths []string) (Store, error)
	Close() error
}
