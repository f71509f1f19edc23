package config

const (
	defaultLogDir          = "~/.local/share/mdfview/logs"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultSearchThreshold = 1000
	defaultPlotMode        = "stack"
	defaultPlotDecimation  = 1
	defaultPlotWidth       = 1600
	defaultPlotHeight      = 800
	defaultTableStart      = 0.0
	defaultTableStop       = 10.0
	defaultTableRaster     = 0.01
	defaultPreviewRows     = 50
	defaultConvertFormat   = "csv"
	defaultCompression     = "none"
	defaultMinFreeMiB      = 512
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir(),
			LogDir:  defaultLogDir,
		},
		Catalog: Catalog{
			SearchThreshold: defaultSearchThreshold,
		},
		Plot: Plot{
			Mode:       defaultPlotMode,
			Decimation: defaultPlotDecimation,
			Width:      defaultPlotWidth,
			Height:     defaultPlotHeight,
		},
		Table: Table{
			Start:       defaultTableStart,
			Stop:        defaultTableStop,
			Raster:      defaultTableRaster,
			PreviewRows: defaultPreviewRows,
		},
		Convert: Convert{
			Format:      defaultConvertFormat,
			Compression: defaultCompression,
			MinFreeMiB:  defaultMinFreeMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
