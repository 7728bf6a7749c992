// Package config loads cnappd settings from defaults, an optional YAML file
// and CNAPP_ environment variables, in that order of precedence.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix scopes environment overrides. Nested keys use a double
// underscore: CNAPP_LOG__LEVEL sets log.level.
const EnvPrefix = "CNAPP_"

// Config is the resolved runtime configuration.
type Config struct {
	Addr             string       `koanf:"addr"`
	BasePath         string       `koanf:"base_path"`
	SeedPath         string       `koanf:"seed_path"`
	TemplatesDir     string       `koanf:"templates_dir"`
	ValidatePayloads bool         `koanf:"validate_payloads"`
	Log              LogConfig    `koanf:"log"`
	Charts           ChartsConfig `koanf:"charts"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ChartsConfig tunes server-side chart rendering.
type ChartsConfig struct {
	Theme      string        `koanf:"theme"`
	AssetsHost string        `koanf:"assets_host"`
	CacheTTL   time.Duration `koanf:"cache_ttl"`
	Colors     []string      `koanf:"colors"`
}

// Defaults returns the baseline values loaded before any file or env.
func Defaults() map[string]any {
	return map[string]any{
		"addr":               ":8080",
		"base_path":          "/admin",
		"seed_path":          "",
		"templates_dir":      "",
		"validate_payloads":  false,
		"log.level":          "info",
		"log.format":         "text",
		"charts.theme":       "westeros",
		"charts.assets_host": "",
		"charts.cache_ttl":   "5m",
	}
}

// Load resolves configuration. An empty path skips the file layer; a
// missing explicit file is an error.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("config: addr is required")
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("config: base_path %q must start with /", c.BasePath)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Log.Format)
	}
	if c.Charts.CacheTTL < 0 {
		return fmt.Errorf("config: charts.cache_ttl must not be negative")
	}
	for _, color := range c.Charts.Colors {
		if !strings.HasPrefix(color, "#") {
			return fmt.Errorf("config: charts.colors entry %q must be a hex color", color)
		}
	}
	return nil
}

// NewLogger builds the process logger. A nil writer means stderr.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if raw == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: unsupported log level %q", raw)
	}
	return level, nil
}
