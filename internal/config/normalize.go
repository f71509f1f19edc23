package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlot()
	c.normalizeTable()
	c.normalizeConvert()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir()
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePlot() {
	c.Plot.Mode = strings.ToLower(strings.TrimSpace(c.Plot.Mode))
	if c.Plot.Mode == "" {
		c.Plot.Mode = defaultPlotMode
	}
	// Decimation below one means "every sample".
	if c.Plot.Decimation < 1 {
		c.Plot.Decimation = 1
	}
	if c.Plot.Width <= 0 {
		c.Plot.Width = defaultPlotWidth
	}
	if c.Plot.Height <= 0 {
		c.Plot.Height = defaultPlotHeight
	}
	if c.Catalog.SearchThreshold <= 0 {
		c.Catalog.SearchThreshold = defaultSearchThreshold
	}
}

func (c *Config) normalizeTable() {
	if c.Table.PreviewRows <= 0 {
		c.Table.PreviewRows = defaultPreviewRows
	}
}

func (c *Config) normalizeConvert() {
	c.Convert.Format = strings.ToLower(strings.TrimSpace(c.Convert.Format))
	if c.Convert.Format == "" {
		c.Convert.Format = defaultConvertFormat
	}
	c.Convert.Compression = strings.ToLower(strings.TrimSpace(c.Convert.Compression))
	if c.Convert.Compression == "" {
		c.Convert.Compression = defaultCompression
	}
	if c.Convert.MinFreeMiB < 0 {
		c.Convert.MinFreeMiB = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
