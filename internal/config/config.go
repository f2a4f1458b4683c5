package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/charmbracelet/virtua/internal/virtual"
	"github.com/tidwall/sjson"
)

const (
	defaultConfigFile    = "virtua.json"
	defaultDataDirectory = ".virtua"
	defaultLogFile       = "virtua.log"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "VIRTUA_CONFIG"
)

type Mode string

const (
	ModeList Mode = "list"
	ModeGrid Mode = "grid"
)

type Options struct {
	Debug         bool   `json:"debug,omitempty"`
	DataDirectory string `json:"data_directory,omitempty"` // Relative to the cwd
}

// Config holds the configuration of a virtualization session.
type Config struct {
	Mode         Mode    `json:"mode,omitempty"`
	Count        int     `json:"count"`
	EstimateSize float64 `json:"estimate_size"`
	Overscan     int     `json:"overscan"`
	Gap          float64 `json:"gap,omitempty"`
	Horizontal   bool    `json:"horizontal,omitempty"`
	// Grid only.
	Columns int `json:"columns,omitempty"`
	// Zero derives the column width from the container.
	ColumnWidth float64 `json:"column_width,omitempty"`
	Epsilon     float64 `json:"epsilon,omitempty"`

	Options *Options `json:"options,omitempty"`
}

// settableKeys are the keys `config set` accepts.
var settableKeys = []string{
	"mode",
	"count",
	"estimate_size",
	"overscan",
	"gap",
	"horizontal",
	"columns",
	"column_width",
	"epsilon",
	"options.debug",
	"options.data_directory",
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Mode:         ModeList,
		Count:        10000,
		EstimateSize: 3,
		Overscan:     virtual.DefaultOverscan,
		Columns:      4,
		Options: &Options{
			DataDirectory: defaultDataDirectory,
		},
	}
}

// DefaultPath returns the config file path, honoring VIRTUA_CONFIG.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return defaultConfigFile
}

// Load reads the config file at path over the defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("No config file found, using defaults", "path", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Options == nil {
		cfg.Options = &Options{}
	}
	if cfg.Options.DataDirectory == "" {
		cfg.Options.DataDirectory = defaultDataDirectory
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the static setup before any session is built from it.
func (c *Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeList, ModeGrid, "":
	default:
		errs = append(errs, fmt.Errorf("mode must be %q or %q, got %q", ModeList, ModeGrid, c.Mode))
	}
	if c.Count < 0 {
		errs = append(errs, fmt.Errorf("count must not be negative, got %d", c.Count))
	}
	if c.EstimateSize <= 0 {
		errs = append(errs, fmt.Errorf("estimate_size must be positive, got %v", c.EstimateSize))
	}
	if c.Overscan < 0 {
		errs = append(errs, fmt.Errorf("overscan must not be negative, got %d", c.Overscan))
	}
	if c.Gap < 0 {
		errs = append(errs, fmt.Errorf("gap must not be negative, got %v", c.Gap))
	}
	if c.Mode == ModeGrid && c.Columns < 1 {
		errs = append(errs, fmt.Errorf("columns must be at least 1 in grid mode, got %d", c.Columns))
	}
	if c.ColumnWidth < 0 {
		errs = append(errs, fmt.Errorf("column_width must not be negative, got %v", c.ColumnWidth))
	}
	if c.Epsilon < 0 {
		errs = append(errs, fmt.Errorf("epsilon must not be negative, got %v", c.Epsilon))
	}
	return errors.Join(errs...)
}

// IsGrid reports whether the session lays items out in a grid.
func (c *Config) IsGrid() bool {
	return c.Mode == ModeGrid
}

// LogFile returns the path of the log file.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDirectory(), "logs", defaultLogFile)
}

// Debug reports whether debug logging is on.
func (c *Config) Debug() bool {
	return c.Options != nil && c.Options.Debug
}

// ListOptions maps the config to list virtualizer options.
func (c *Config) ListOptions() []virtual.Option {
	opts := []virtual.Option{
		virtual.WithCount(c.Count),
		virtual.WithEstimateSize(c.EstimateSize),
		virtual.WithOverscan(c.Overscan),
		virtual.WithGap(c.Gap),
		virtual.WithEpsilon(c.Epsilon),
	}
	if c.Horizontal {
		opts = append(opts, virtual.WithHorizontal())
	}
	return opts
}

// GridOptions maps the config to grid options. fallbackWidth is used as the
// column width when none is configured.
func (c *Config) GridOptions(fallbackWidth float64) []virtual.GridOption {
	width := c.ColumnWidth
	if width <= 0 {
		width = fallbackWidth
	}
	return []virtual.GridOption{
		virtual.WithRowHeight(c.EstimateSize),
		virtual.WithColumnWidth(width),
		virtual.WithGridGap(c.Gap),
		virtual.WithGridOverscan(c.Overscan),
	}
}

// Set writes a single key to the config file at path, creating it when
// missing. The file is only written when the result is valid.
func Set(path, key, value string) error {
	if !slices.Contains(settableKeys, key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			data = []byte("{}")
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	updated, err := sjson.SetBytes(data, key, parseValue(value))
	if err != nil {
		return fmt.Errorf("failed to set config field %s: %w", key, err)
	}

	cfg := Default()
	if err := json.Unmarshal(updated, cfg); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	slog.Debug("Config field updated", "path", path, "key", key, "value", value)
	return nil
}

// parseValue types a command line value for sjson. ParseBool is avoided
// since it takes "1" and "0" as booleans.
func parseValue(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
