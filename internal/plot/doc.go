// Package plot lays out extracted signals as a renderable figure
// description and rasterises it to PNG.
//
// Build produces a Spec: either a stacked layout with one panel per signal
// sharing the time axis, or an overlay layout with every trace in one panel
// and a primary and secondary value axis. Value and time ranges are fixed so
// consumers do not autoscale. RenderPNG draws a Spec with go-chart.
package plot
