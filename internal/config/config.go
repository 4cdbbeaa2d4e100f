// Package config loads waypoint settings from a file, .env files and WAYPOINT_*
// environment variables, in that order of precedence (last wins).
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendLoam     = "loam"
)

// Config is the full application configuration.
type Config struct {
	Log     LogConfig     `json:"log" yaml:"log" toml:"log"`
	Server  ServerConfig  `json:"server" yaml:"server" toml:"server"`
	Store   StoreConfig   `json:"store" yaml:"store" toml:"store"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" toml:"catalog"`
	Canvas  CanvasConfig  `json:"canvas" yaml:"canvas" toml:"canvas"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level" validate:"oneof=debug info warn warning error"`
	Format string `json:"format" yaml:"format" toml:"format" validate:"oneof=text json"`
}

// ServerConfig controls the HTTP editor.
type ServerConfig struct {
	Addr              string `json:"addr" yaml:"addr" toml:"addr" validate:"required"`
	ValidateRequests  bool   `json:"validate_requests" yaml:"validate_requests" toml:"validate_requests"`
	ShutdownTimeoutMs int    `json:"shutdown_timeout_ms" yaml:"shutdown_timeout_ms" toml:"shutdown_timeout_ms" validate:"gte=0"`
}

// ShutdownTimeout returns the grace period for in-flight requests.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutMs) * time.Millisecond
}

// StoreConfig selects and configures the journey repository.
type StoreConfig struct {
	Backend string `json:"backend" yaml:"backend" toml:"backend" validate:"required,oneof=memory file redis sqlite postgres loam"`
	// Path is a directory for file and loam, or a database file for sqlite.
	Path          string `json:"path" yaml:"path" toml:"path"`
	DSN           string `json:"dsn" yaml:"dsn" toml:"dsn"`
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword string `json:"redis_password" yaml:"redis_password" toml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" toml:"redis_db" validate:"gte=0"`
	Prefix        string `json:"prefix" yaml:"prefix" toml:"prefix"`
	Compress      bool   `json:"compress" yaml:"compress" toml:"compress"`
}

// CatalogConfig points at the remote function catalog. An empty BaseURL disables it.
type CatalogConfig struct {
	BaseURL   string `json:"base_url" yaml:"base_url" toml:"base_url" validate:"omitempty,url"`
	TimeoutMs int    `json:"timeout_ms" yaml:"timeout_ms" toml:"timeout_ms" validate:"gte=0"`
}

// Timeout returns the per-request timeout.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// CanvasConfig tunes layout, zoom and render size.
type CanvasConfig struct {
	Width      int     `json:"width" yaml:"width" toml:"width" validate:"gte=100"`
	Height     int     `json:"height" yaml:"height" toml:"height" validate:"gte=100"`
	Spacing    float64 `json:"spacing" yaml:"spacing" toml:"spacing" validate:"gt=0"`
	Offset     float64 `json:"offset" yaml:"offset" toml:"offset"`
	MinColumns int     `json:"min_columns" yaml:"min_columns" toml:"min_columns" validate:"gte=1"`
	MinScale   float64 `json:"min_scale" yaml:"min_scale" toml:"min_scale" validate:"gt=0"`
	MaxScale   float64 `json:"max_scale" yaml:"max_scale" toml:"max_scale" validate:"gtfield=MinScale"`
	Radius     float64 `json:"radius" yaml:"radius" toml:"radius" validate:"gt=0"`
}

// SceneOptions converts the canvas section for canvas.BuildScene.
func (c CanvasConfig) SceneOptions() canvas.SceneOptions {
	opts := canvas.DefaultSceneOptions()
	opts.Layout = canvas.LayoutOptions{Spacing: c.Spacing, Offset: c.Offset, MinColumns: c.MinColumns}
	opts.Radius = c.Radius
	return opts
}

// ScaleBounds returns the zoom range.
func (c CanvasConfig) ScaleBounds() canvas.ScaleBounds {
	return canvas.ScaleBounds{Min: c.MinScale, Max: c.MaxScale}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Addr: ":8080", ValidateRequests: true, ShutdownTimeoutMs: 5000},
		Store:  StoreConfig{Backend: BackendMemory, Prefix: "waypoint"},
		Catalog: CatalogConfig{
			TimeoutMs: 10000,
		},
		Canvas: CanvasConfig{
			Width:      canvas.DefaultWidth,
			Height:     canvas.DefaultHeight,
			Spacing:    canvas.DefaultSpacing,
			Offset:     canvas.DefaultOffset,
			MinColumns: canvas.DefaultMinColumns,
			MinScale:   canvas.DefaultMinScale,
			MaxScale:   canvas.DefaultMaxScale,
			Radius:     canvas.DefaultRadius,
		},
	}
}

// Load builds the configuration. path may be empty. envFiles default to ".env";
// missing env files are ignored, and they never override variables already set.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides cfg from WAYPOINT_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"WAYPOINT_LOG_LEVEL":      &cfg.Log.Level,
		"WAYPOINT_LOG_FORMAT":     &cfg.Log.Format,
		"WAYPOINT_SERVER_ADDR":    &cfg.Server.Addr,
		"WAYPOINT_STORE_BACKEND":  &cfg.Store.Backend,
		"WAYPOINT_STORE_PATH":     &cfg.Store.Path,
		"WAYPOINT_STORE_DSN":      &cfg.Store.DSN,
		"WAYPOINT_STORE_PREFIX":   &cfg.Store.Prefix,
		"WAYPOINT_REDIS_ADDR":     &cfg.Store.RedisAddr,
		"WAYPOINT_REDIS_PASSWORD": &cfg.Store.RedisPassword,
		"WAYPOINT_CATALOG_URL":    &cfg.Catalog.BaseURL,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"WAYPOINT_REDIS_DB":           &cfg.Store.RedisDB,
		"WAYPOINT_CATALOG_TIMEOUT_MS": &cfg.Catalog.TimeoutMs,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}

	if v, ok := lookup("WAYPOINT_STORE_COMPRESS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid WAYPOINT_STORE_COMPRESS: %w", err)
		}
		cfg.Store.Compress = b
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and backend requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Store.Backend {
	case BackendFile, BackendLoam, BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("invalid config: store.path is required for the %s backend", c.Store.Backend)
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("invalid config: store.redis_addr is required for the redis backend")
		}
	case BackendPostgres:
		if c.Store.DSN == "" {
			return errors.New("invalid config: store.dsn is required for the postgres backend")
		}
	}
	return nil
}
