package config

import (
	"errors"
	"fmt"

	"mdfview/internal/measure"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlot(); err != nil {
		return err
	}
	if err := c.validateTable(); err != nil {
		return err
	}
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlot() error {
	switch c.Plot.Mode {
	case "stack", "overlay":
	default:
		return fmt.Errorf("plot.mode must be stack or overlay, got %q", c.Plot.Mode)
	}
	return nil
}

func (c *Config) validateTable() error {
	if c.Table.Start < 0 {
		return errors.New("table.start must be >= 0")
	}
	if c.Table.Stop <= c.Table.Start {
		return errors.New("table.stop must be greater than table.start")
	}
	if c.Table.Raster <= 0 {
		return errors.New("table.raster must be positive")
	}
	return nil
}

func (c *Config) validateConvert() error {
	if _, err := measure.ParseFormat(c.Convert.Format); err != nil {
		return fmt.Errorf("convert.format: %w", err)
	}
	if _, err := measure.ParseCompression(c.Convert.Compression); err != nil {
		return fmt.Errorf("convert.compression: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
