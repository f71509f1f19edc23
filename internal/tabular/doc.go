// Package tabular slices a measurement to a time window and resamples the
// selected channels onto a fixed raster for tabular preview.
//
// Each Build call walks Idle, Validating, Slicing, Resampling and ends in
// Ready or Failed. Window validation happens before the store is touched.
package tabular
