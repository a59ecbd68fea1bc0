// Package config loads rescuegrid settings from an optional YAML file and
// RESCUEGRID_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RESCUEGRID_"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	Grid    GridConfig    `mapstructure:"grid" envPrefix:"GRID_"`
	Store   StoreConfig   `mapstructure:"store" envPrefix:"STORE_"`
	HTTP    HTTPConfig    `mapstructure:"http" envPrefix:"HTTP_"`
	Log     LogConfig     `mapstructure:"log" envPrefix:"LOG_"`
	Metrics MetricsConfig `mapstructure:"metrics" envPrefix:"METRICS_"`
}

// GridConfig sizes editing sessions.
type GridConfig struct {
	Cols int `mapstructure:"cols" env:"COLS"`
	Rows int `mapstructure:"rows" env:"ROWS"`
}

// StoreConfig selects and configures the scenario store.
type StoreConfig struct {
	Backend       string        `mapstructure:"backend" env:"BACKEND"`
	Path          string        `mapstructure:"path" env:"PATH"`
	RedisAddr     string        `mapstructure:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"redis_db" env:"REDIS_DB"`
	Prefix        string        `mapstructure:"prefix" env:"PREFIX"`
	TTL           time.Duration `mapstructure:"ttl" env:"TTL"`
}

// HTTPConfig configures the live-visualizer API.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" env:"ADDR"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Level  string `mapstructure:"level" env:"LEVEL"`
	Format string `mapstructure:"format" env:"FORMAT"`
}

// MetricsConfig toggles prometheus collection.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" env:"ENABLED"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Grid:    GridConfig{Cols: 10, Rows: 10},
		Store:   StoreConfig{Backend: BackendFile, Path: ".rescuegrid/scenarios", RedisAddr: "localhost:6379"},
		HTTP:    HTTPConfig{Addr: ":8080"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML overlays the document onto cfg. Keys absent from the document
// keep their current value; unknown keys are rejected.
func decodeYAML(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	var errs []error
	if c.Grid.Cols <= 0 || c.Grid.Rows <= 0 {
		errs = append(errs, fmt.Errorf("grid dimensions must be positive, got %dx%d", c.Grid.Cols, c.Grid.Rows))
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the file backend"))
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Store.TTL < 0 {
		errs = append(errs, errors.New("store.ttl must not be negative"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
