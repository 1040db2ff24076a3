// Package config loads the gcampus tool configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/desklab/gcampus-go/pkg/gcampus"
)

// Config holds all settings of the gcampus command.
type Config struct {
	Calibration CalibrationConfig `yaml:"calibration"`
	Chart       ChartConfig       `yaml:"chart"`
	Water       WaterConfig       `yaml:"water"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CalibrationConfig configures curve sampling.
type CalibrationConfig struct {
	Variable    string  `yaml:"variable" validate:"required"`
	DomainStart float64 `yaml:"domain_start"`
	DomainEnd   float64 `yaml:"domain_end" validate:"gtfield=DomainStart"`
	Samples     int     `yaml:"samples" validate:"min=2"`
	Annotation  string  `yaml:"annotation" validate:"required"`
}

// ChartConfig configures image rendering.
type ChartConfig struct {
	Width  int    `yaml:"width" validate:"min=64"`
	Height int    `yaml:"height" validate:"min=64"`
	Format string `yaml:"format" validate:"oneof=png svg"`
}

// WaterConfig configures the water lookup client.
type WaterConfig struct {
	APIURL      string  `yaml:"api_url" validate:"required,url"`
	LookupDelay string  `yaml:"lookup_delay"`
	Timeout     string  `yaml:"timeout"`
	GeoSize     int     `yaml:"geo_size" validate:"min=1"`
	OverpassRPS float64 `yaml:"overpass_rps" validate:"gt=0"`
	Burst       int     `yaml:"overpass_burst" validate:"min=1"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding" validate:"oneof=json console"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	opts := gcampus.DefaultOptions()
	return &Config{
		Calibration: CalibrationConfig{
			Variable:    opts.Variable,
			DomainStart: opts.DomainStart,
			DomainEnd:   opts.DomainEnd,
			Samples:     opts.SampleCount,
			Annotation:  opts.Annotation,
		},
		Chart: ChartConfig{
			Width:  640,
			Height: 400,
			Format: "png",
		},
		Water: WaterConfig{
			APIURL:      "http://localhost:8000",
			LookupDelay: "300ms",
			Timeout:     "30s",
			GeoSize:     800,
			OverpassRPS: 1,
			Burst:       1,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("GCAMPUS_API_URL"); url != "" {
		c.Water.APIURL = url
	}
	if d := os.Getenv("GCAMPUS_LOOKUP_DELAY"); d != "" {
		c.Water.LookupDelay = d
	}
	if rps := os.Getenv("GCAMPUS_OVERPASS_RPS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			c.Water.OverpassRPS = v
		}
	}
	if level := os.Getenv("GCAMPUS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks field constraints and durations.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for name, v := range map[string]string{
		"water.lookup_delay": c.Water.LookupDelay,
		"water.timeout":      c.Water.Timeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid config: %s: %w", name, err)
		}
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); c.Logging.Level != "" && err != nil {
		return fmt.Errorf("invalid config: logging.level: %w", err)
	}
	return nil
}

// GetLookupDelay returns the debounce delay of map lookups.
func (c *Config) GetLookupDelay() time.Duration {
	d, err := time.ParseDuration(c.Water.LookupDelay)
	if err != nil {
		return 300 * time.Millisecond
	}
	return d
}

// GetTimeout returns the HTTP timeout of lookups.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Water.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Options returns widget options for logger.
func (c *Config) Options(logger *zap.Logger) gcampus.Options {
	return gcampus.Options{
		Variable:    c.Calibration.Variable,
		DomainStart: c.Calibration.DomainStart,
		DomainEnd:   c.Calibration.DomainEnd,
		SampleCount: c.Calibration.Samples,
		Annotation:  c.Calibration.Annotation,
		Logger:      logger,
	}
}

// NewLogger builds a production zap logger at the configured level. verbose
// forces debug output.
func (c *Config) NewLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Logging.Encoding != "" {
		zc.Encoding = c.Logging.Encoding
	}
	if c.Logging.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Logging.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}
