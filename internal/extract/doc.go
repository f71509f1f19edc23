// Package extract pulls sample arrays for a list of channels from the store
// and thins them for rendering.
//
// Decimation is strided subsampling: output element i is source element
// i*factor. It is a rendering shortcut that keeps plots responsive on long
// recordings. It does not low-pass filter or average, so it can alias fast
// signals; use factor 1 when exact waveforms matter.
package extract
