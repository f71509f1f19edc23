package plot

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"

	"mdfview/internal/extract"
)

// Mode selects the figure layout.
type Mode string

const (
	ModeStack   Mode = "stack"
	ModeOverlay Mode = "overlay"
)

// Figure-wide constants shared by both layouts.
const (
	FigureTitle     = "Signal Plot"
	TimeAxisTitle   = "Time [s]"
	FigureHeight    = 800
	VerticalSpacing = 0.02

	PrimaryAxisTitle   = "Primary Axis"
	SecondaryAxisTitle = "Secondary Axis"
)

// ParseMode accepts "stack" or "overlay" in any case.
func ParseMode(value string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(value))); mode {
	case ModeStack, ModeOverlay:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown plot mode %q (want stack or overlay)", value)
	}
}

// Settings are the user-controlled plot options.
type Settings struct {
	Mode       Mode
	Decimation int
	// SecondaryAxis names channels drawn against the secondary axis in
	// overlay mode. Ignored in stack mode.
	SecondaryAxis []string
}

// DefaultSettings returns stack mode without decimation.
func DefaultSettings() Settings {
	return Settings{Mode: ModeStack, Decimation: 1}
}

// Range is a closed interval on an axis.
type Range struct {
	Min float64
	Max float64
}

// Axis describes one axis of a panel.
type Axis struct {
	Title string
	Range Range
	// Fixed disables interactive zoom on the axis.
	Fixed bool
}

// Trace is one plotted line.
type Trace struct {
	Name      string
	Label     string
	X         []float64
	Y         []float64
	Secondary bool
}

// Panel is one row of the figure.
type Panel struct {
	Title     string
	YAxis     Axis
	Secondary *Axis
	Traces    []Trace
}

// Spec is a renderer-neutral figure description.
type Spec struct {
	Title           string
	Mode            Mode
	Height          int
	VerticalSpacing float64
	SharedX         bool
	XAxis           Axis
	Panels          []Panel
}

// Empty reports whether the figure has nothing to draw.
func (s Spec) Empty() bool {
	return len(s.Panels) == 0
}

// Traces returns every trace in panel order.
func (s Spec) Traces() []Trace {
	var out []Trace
	for _, p := range s.Panels {
		out = append(out, p.Traces...)
	}
	return out
}

// Build lays out signals according to settings. No signals yields an empty
// Spec.
func Build(signals []extract.Signal, settings Settings) Spec {
	if len(signals) == 0 {
		return Spec{}
	}
	mode := settings.Mode
	if mode == "" {
		mode = ModeStack
	}

	spec := Spec{
		Title:  FigureTitle,
		Mode:   mode,
		Height: FigureHeight,
		XAxis:  Axis{Title: TimeAxisTitle, Range: timeRange(signals)},
	}

	switch mode {
	case ModeOverlay:
		spec.Panels = []Panel{overlayPanel(signals, settings.SecondaryAxis)}
	default:
		spec.SharedX = true
		spec.VerticalSpacing = VerticalSpacing
		spec.Panels = make([]Panel, 0, len(signals))
		for _, sig := range signals {
			spec.Panels = append(spec.Panels, Panel{
				Title:  sig.Name,
				YAxis:  Axis{Title: sig.Unit, Range: valueRange(sig.Samples), Fixed: true},
				Traces: []Trace{newTrace(sig, false)},
			})
		}
	}
	return spec
}

func overlayPanel(signals []extract.Signal, secondary []string) Panel {
	var primaryValues, secondaryValues []float64
	panel := Panel{Title: FigureTitle}
	for _, sig := range signals {
		onSecondary := slices.Contains(secondary, sig.Name)
		panel.Traces = append(panel.Traces, newTrace(sig, onSecondary))
		if onSecondary {
			secondaryValues = append(secondaryValues, sig.Samples...)
		} else {
			primaryValues = append(primaryValues, sig.Samples...)
		}
	}
	panel.YAxis = Axis{Title: PrimaryAxisTitle, Range: valueRange(primaryValues), Fixed: true}
	panel.Secondary = &Axis{Title: SecondaryAxisTitle, Range: valueRange(secondaryValues), Fixed: true}
	return panel
}

func newTrace(sig extract.Signal, secondary bool) Trace {
	return Trace{
		Name:      sig.Name,
		Label:     sig.Label(),
		X:         sig.Timestamps,
		Y:         sig.Samples,
		Secondary: secondary,
	}
}

func timeRange(signals []extract.Signal) Range {
	var all []float64
	for _, sig := range signals {
		all = append(all, sig.Timestamps...)
	}
	return span(all, 0)
}

// valueRange pads the data extent by five percent on both sides.
func valueRange(values []float64) Range {
	return span(values, 0.05)
}

// span returns the finite extent of values widened by pad times its width.
// Degenerate inputs still produce a non-empty interval.
func span(values []float64, pad float64) Range {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return Range{Min: 0, Max: 1}
	}
	lo, hi := floats.Min(finite), floats.Max(finite)
	if lo == hi {
		delta := math.Max(math.Abs(lo)*0.05, 0.5)
		return Range{Min: lo - delta, Max: hi + delta}
	}
	margin := (hi - lo) * pad
	return Range{Min: lo - margin, Max: hi + margin}
}
