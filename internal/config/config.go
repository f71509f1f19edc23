package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// WorkDir holds transient conversion/decode artifacts and the session lock.
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// Catalog contains channel catalog settings.
type Catalog struct {
	// SearchThreshold is the catalog size above which a search filter is
	// required before listing channels.
	SearchThreshold int `toml:"search_threshold"`
}

// Plot contains plot defaults.
type Plot struct {
	Mode       string `toml:"mode"`
	Decimation int    `toml:"decimation"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
}

// Table contains tabular export defaults.
type Table struct {
	Start       float64 `toml:"start"`
	Stop        float64 `toml:"stop"`
	Raster      float64 `toml:"raster"`
	PreviewRows int     `toml:"preview_rows"`
}

// Convert contains file conversion defaults.
type Convert struct {
	Format      string `toml:"format"`
	Compression string `toml:"compression"`
	// MinFreeMiB triggers a low-space warning before writing an artifact.
	MinFreeMiB int `toml:"min_free_mib"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mdfview.
//
// Configuration sections by subsystem:
//   - Paths: workspace and log directories
//   - Catalog: channel catalog search behaviour
//   - Plot: default plot mode, decimation, and image size
//   - Table: default time window and raster for tabular export
//   - Convert: default output format and compression
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Catalog Catalog `toml:"catalog"`
	Plot    Plot    `toml:"plot"`
	Table   Table   `toml:"table"`
	Convert Convert `toml:"convert"`
	Logging Logging `toml:"logging"`
}

// envOverrides lists the environment variables that take precedence over the
// file. Blank values leave the file setting untouched.
type envOverrides struct {
	WorkDir   string `env:"MDFVIEW_WORK_DIR"`
	LogDir    string `env:"MDFVIEW_LOG_DIR"`
	LogLevel  string `env:"MDFVIEW_LOG_LEVEL"`
	LogFormat string `env:"MDFVIEW_LOG_FORMAT"`
	PlotMode  string `env:"MDFVIEW_PLOT_MODE"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mdfview/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if v := strings.TrimSpace(overrides.WorkDir); v != "" {
		c.Paths.WorkDir = v
	}
	if v := strings.TrimSpace(overrides.LogDir); v != "" {
		c.Paths.LogDir = v
	}
	if v := strings.TrimSpace(overrides.LogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(overrides.LogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := strings.TrimSpace(overrides.PlotMode); v != "" {
		c.Plot.Mode = v
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mdfview.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the workspace and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultWorkDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "mdfview", "work")
	}
	return "~/.cache/mdfview/work"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
