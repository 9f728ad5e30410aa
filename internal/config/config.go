package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration. Values come from an optional
// YAML file (DOCFORGE_CONFIG) with environment variables taking precedence.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Render   RenderConfig   `yaml:"render"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RenderConfig controls the rasterizing renderer's browser process.
type RenderConfig struct {
	ChromePath     string `yaml:"chrome_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	NoSandbox      bool   `yaml:"no_sandbox"`
}

type TracingConfig struct {
	Enabled          bool    `yaml:"enabled"`
	ServiceName      string  `yaml:"service_name"`
	ExporterEndpoint string  `yaml:"exporter_endpoint"`
	SamplingRatio    float64 `yaml:"sampling_ratio"`
}

// RenderTimeout returns the per-render deadline for the raster path.
func (c Config) RenderTimeout() time.Duration {
	if c.Render.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Render.TimeoutSeconds) * time.Second
}

func defaults() Config {
	return Config{
		HTTP:     HTTPConfig{Addr: ":8080"},
		Database: DatabaseConfig{DSN: "docforge.db"},
		Render:   RenderConfig{TimeoutSeconds: 30},
		Tracing: TracingConfig{
			ServiceName:   "docforge",
			SamplingRatio: 1.0,
		},
	}
}

// Load builds the configuration from file and environment.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("DOCFORGE_CONFIG")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DOCFORGE_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("DOCFORGE_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DOCFORGE_CHROME_PATH"); v != "" {
		cfg.Render.ChromePath = v
	}
	if v := os.Getenv("DOCFORGE_RENDER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Render.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("DOCFORGE_RENDER_NO_SANDBOX"); v != "" {
		cfg.Render.NoSandbox = parseBool(v)
	}
	if v := os.Getenv("DOCFORGE_TRACING_ENABLED"); v != "" {
		cfg.Tracing.Enabled = parseBool(v)
	}
	if v := os.Getenv("DOCFORGE_TRACING_ENDPOINT"); v != "" {
		cfg.Tracing.ExporterEndpoint = v
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
