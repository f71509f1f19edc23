package tabular

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"mdfview/internal/logging"
	"mdfview/internal/measure"
	"mdfview/internal/services"
)

// State is a step of the table pipeline.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSlicing    State = "slicing"
	StateResampling State = "resampling"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

// DefaultRaster is the resampling interval in seconds used when none is set.
const DefaultRaster = 0.01

// Window is the requested time slice and resampling interval, in seconds.
type Window struct {
	Start  float64
	Stop   float64
	Raster float64
}

// DefaultWindow returns the first ten seconds at DefaultRaster.
func DefaultWindow() Window {
	return Window{Start: 0, Stop: 10, Raster: DefaultRaster}
}

// Validate reports an ErrInvalidRange error for unusable windows.
func (w Window) Validate() error {
	switch {
	case !finite(w.Start) || !finite(w.Stop) || !finite(w.Raster):
		return services.Wrap(services.ErrInvalidRange, "table", "validate", "",
			fmt.Errorf("window %g..%g raster %g must be finite", w.Start, w.Stop, w.Raster))
	case w.Start >= w.Stop:
		return services.Wrap(services.ErrInvalidRange, "table", "validate",
			fmt.Sprintf("start %g >= stop %g", w.Start, w.Stop), nil)
	case w.Start < 0:
		return services.Wrap(services.ErrInvalidRange, "table", "validate", "",
			fmt.Errorf("start time %g is negative", w.Start))
	case w.Raster <= 0:
		return services.Wrap(services.ErrInvalidRange, "table", "validate", "",
			fmt.Errorf("raster %g must be positive", w.Raster))
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Result is the outcome of one Build call. Table is set only when State is
// StateReady; Message is set only when State is StateFailed.
type Result struct {
	State   State
	Table   *measure.Table
	Message string
	Err     error
}

// Rows returns the row count of a ready table.
func (r Result) Rows() int {
	return r.Table.Len()
}

// Summary is the caption shown above a ready table.
func (r Result) Summary() string {
	return fmt.Sprintf("Displaying %d rows.", r.Rows())
}

// Slicer is the store surface needed to cut a time window.
type Slicer interface {
	CutTimeRange(ctx context.Context, start, stop float64) (measure.Store, error)
}

// Exporter builds preview tables.
type Exporter struct {
	logger *slog.Logger
	// observe is called on every state transition when set.
	observe func(State)
}

// Option customises an Exporter.
type Option func(*Exporter)

// WithObserver registers a callback for state transitions.
func WithObserver(fn func(State)) Option {
	return func(e *Exporter) { e.observe = fn }
}

// New builds an exporter.
func New(logger *slog.Logger, opts ...Option) *Exporter {
	e := &Exporter{logger: logging.NewComponentLogger(logger, "tabular")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build cuts store to the window and projects names onto the raster with
// timestamps rebased to zero. The intermediate sliced store is closed before
// Build returns.
func (e *Exporter) Build(ctx context.Context, store Slicer, names []string, window Window) Result {
	logger := logging.WithContext(ctx, e.logger)
	e.enter(StateIdle)

	e.enter(StateValidating)
	if err := window.Validate(); err != nil {
		return e.fail(logger, err)
	}
	if err := ctx.Err(); err != nil {
		return e.fail(logger, err)
	}

	e.enter(StateSlicing)
	cut, err := store.CutTimeRange(ctx, window.Start, window.Stop)
	if err != nil {
		return e.fail(logger, services.Wrap(services.ErrTable, "table", "slice", "", err))
	}
	defer func() {
		if cerr := cut.Close(); cerr != nil {
			logger.Debug("closing sliced store failed", logging.Error(cerr))
		}
	}()

	if err := ctx.Err(); err != nil {
		return e.fail(logger, err)
	}

	e.enter(StateResampling)
	table, err := cut.ToTable(ctx, names, window.Raster, true)
	if err != nil {
		return e.fail(logger, services.Wrap(services.ErrTable, "table", "resample", "", err))
	}

	e.enter(StateReady)
	logger.Info("table ready",
		logging.Int("rows", table.Len()),
		logging.Int("channels", len(names)),
		logging.Float64("start", window.Start),
		logging.Float64("stop", window.Stop),
		logging.Float64("raster", window.Raster))
	return Result{State: StateReady, Table: table}
}

func (e *Exporter) enter(state State) {
	if e.observe != nil {
		e.observe(state)
	}
}

func (e *Exporter) fail(logger *slog.Logger, err error) Result {
	e.enter(StateFailed)
	if errors.Is(err, services.ErrInvalidRange) {
		logger.Info("table window rejected", logging.Error(err))
	} else {
		logging.WarnWithContext(logger, "table build failed", "table_build_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "table not displayed"))
	}
	return Result{State: StateFailed, Message: services.UserMessage(err), Err: err}
}
