package extract

import (
	"context"
	"log/slog"

	"mdfview/internal/logging"
	"mdfview/internal/measure"
	"mdfview/internal/services"
)

// Signal is one extracted, decimated channel ready for plotting.
type Signal struct {
	Name       string
	Unit       string
	Comment    string
	Timestamps []float64
	Samples    []float64
}

// Label returns the trace label "{name} [{unit}]".
func (s Signal) Label() string {
	return s.Name + " [" + s.Unit + "]"
}

// Selector is the slice of the store the extractor needs.
type Selector interface {
	SelectSignals(ctx context.Context, names []string) ([]measure.Signal, error)
}

// Extractor turns channel names into decimated signals.
type Extractor struct {
	logger *slog.Logger
}

// New builds an extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logging.NewComponentLogger(logger, "extract")}
}

// Extract requests every name from the store in one batched call and
// decimates the result. An empty names list returns nil without touching the
// store. Factors below one are treated as one. When the store cannot resolve
// the batch the whole batch is abandoned: the result is nil and the error is
// classified as services.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, store Selector, names []string, factor int) ([]Signal, error) {
	if len(names) == 0 {
		return nil, nil
	}
	factor = max(factor, 1)
	logger := logging.WithContext(ctx, e.logger)

	raw, err := store.SelectSignals(ctx, names)
	if err != nil {
		logging.WarnWithContext(logger, "signal selection failed", "extract_select_failed",
			logging.Int("channels", len(names)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check for ambiguous or missing channel names"),
			logging.String(logging.FieldImpact, "plot not rendered"))
		return nil, services.Wrap(services.ErrExtraction, "extract", "select signals", "", err)
	}

	out := make([]Signal, 0, len(raw))
	points := 0
	for _, sig := range raw {
		decimated := Signal{
			Name:       sig.Name,
			Unit:       sig.Unit,
			Comment:    sig.Comment,
			Timestamps: Decimate(sig.Timestamps, factor),
			Samples:    Decimate(sig.Samples, factor),
		}
		points += len(decimated.Samples)
		out = append(out, decimated)
	}

	logger.Debug("signals extracted",
		logging.Int("channels", len(out)),
		logging.Int("decimation", factor),
		logging.Int("points", points))
	return out, nil
}

// Decimate returns every factor-th element of values starting at index 0.
// The result has ceil(len(values)/factor) elements. Factors below one are
// treated as one, which copies values.
func Decimate(values []float64, factor int) []float64 {
	factor = max(factor, 1)
	if len(values) == 0 {
		return []float64{}
	}
	out := make([]float64, 0, (len(values)+factor-1)/factor)
	for i := 0; i < len(values); i += factor {
		out = append(out, values[i])
	}
	return out
}
