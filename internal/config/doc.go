// Package config loads, normalizes, and validates mdfview configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours MDFVIEW_* environment overrides.
// The Config type centralizes every knob the CLI and session need: workspace
// and log directories, plot defaults, tabular export raster, conversion
// defaults, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical plot modes and formats, and clear validation
// errors.
package config
