package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNothingToRender is returned by RenderPNG for an empty Spec.
var ErrNothingToRender = errors.New("plot has no traces")

// Panels shorter than decoratedPanelHeight drop title, legend and time axis;
// below axisPanelHeight the value axes go too. Rows never grow the canvas.
const (
	decoratedPanelHeight = 120
	axisPanelHeight      = 60
	minPanelHeight       = 8
)

var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorOrange,
	chart.ColorCyan,
	chart.ColorAlternateGray,
}

// RenderPNG draws spec into a width by height PNG. Stacked panels are drawn
// one under another, share the time range and split height between them; an
// overlay is a single chart with a secondary value axis.
func RenderPNG(w io.Writer, spec Spec, width, height int) error {
	if spec.Empty() {
		return ErrNothingToRender
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid canvas %dx%d", width, height)
	}

	panelHeight := height / len(spec.Panels)
	if panelHeight < minPanelHeight {
		return fmt.Errorf("%d panels do not fit in %d px (need at least %d px each)",
			len(spec.Panels), height, minPanelHeight)
	}
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	colorIndex := 0
	for i, panel := range spec.Panels {
		title := panel.Title
		if spec.Mode == ModeOverlay {
			title = spec.Title
		}
		rowHeight := panelHeight
		if i == len(spec.Panels)-1 {
			rowHeight = height - i*panelHeight
		}
		decorated := rowHeight >= decoratedPanelHeight
		ch := chart.Chart{
			Width:      width,
			Height:     rowHeight,
			Background: chart.Style{Padding: chart.Box{Top: 2, Left: 16, Right: 16, Bottom: 2}},
			XAxis:      chart.XAxis{Style: chart.Hidden(), Range: &chart.ContinuousRange{Min: spec.XAxis.Range.Min, Max: spec.XAxis.Range.Max}},
			YAxis:      chart.YAxis{Name: panel.YAxis.Title, Range: &chart.ContinuousRange{Min: panel.YAxis.Range.Min, Max: panel.YAxis.Range.Max}},
		}
		if decorated {
			ch.Title = title
			ch.Background.Padding = chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 12}
			ch.XAxis.Style = chart.Shown()
			if i == len(spec.Panels)-1 {
				ch.XAxis.Name = spec.XAxis.Title
			}
		}
		if rowHeight < axisPanelHeight {
			ch.YAxis.Style = chart.Hidden()
		}
		if panel.Secondary != nil {
			ch.YAxisSecondary = chart.YAxis{
				Name:  panel.Secondary.Title,
				Style: ch.YAxis.Style,
				Range: &chart.ContinuousRange{Min: panel.Secondary.Range.Min, Max: panel.Secondary.Range.Max},
			}
		}
		for _, tr := range panel.Traces {
			col := palette[colorIndex%len(palette)]
			colorIndex++
			if len(tr.X) == 0 {
				continue
			}
			series := chart.ContinuousSeries{
				Name:    tr.Label,
				XValues: tr.X,
				YValues: tr.Y,
				Style:   chart.Style{StrokeColor: col, StrokeWidth: 1.5},
			}
			if tr.Secondary {
				series.YAxis = chart.YAxisSecondary
			}
			ch.Series = append(ch.Series, series)
		}
		if len(ch.Series) == 0 {
			continue
		}
		if decorated {
			ch.Elements = []chart.Renderable{chart.Legend(&ch)}
		}

		var buf bytes.Buffer
		if err := ch.Render(chart.PNG, &buf); err != nil {
			return fmt.Errorf("render panel %q: %w", panel.Title, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return fmt.Errorf("decode panel %q: %w", panel.Title, err)
		}
		offset := image.Pt(0, i*panelHeight)
		draw.Draw(canvas, img.Bounds().Add(offset), img, img.Bounds().Min, draw.Src)
	}

	return png.Encode(w, canvas)
}
