// Package config loads service configuration from an optional YAML file
// overlaid with environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Worker pool for async search jobs
	WorkerCount  int           `yaml:"worker_count"`
	MaxQueueSize int           `yaml:"max_queue_size"`
	JobTTL       time.Duration `yaml:"job_ttl"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Search defaults
	DefaultThreshold  float64 `yaml:"default_threshold"`
	DefaultMaxResults int     `yaml:"default_max_results"`
	DefaultMaxPages   int     `yaml:"default_max_pages"`
	MaxLineGap        float64 `yaml:"max_line_gap"`
	MaxColumnGap      float64 `yaml:"max_column_gap"`

	// Grouped-page cache
	CacheSize int `yaml:"cache_size"`

	// Text-only matching
	NgramThreshold float64 `yaml:"ngram_threshold"`
}

// Load builds the configuration. When CONFIG_FILE names a YAML file its
// values are read first; environment variables override it; anything still
// unset falls back to defaults.
func Load() Config {
	var cfg Config

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(data, &cfg)
		}
	}

	cfg.Port = envOr("PORT", defStr(cfg.Port, "8090"))
	cfg.APIKey = envOr("SECTSEEK_API_KEY", cfg.APIKey)

	cfg.WorkerCount = envInt("WORKER_COUNT", defInt(cfg.WorkerCount, 4))
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", defInt(cfg.MaxQueueSize, 100))
	cfg.JobTTL = envDuration("JOB_TTL", defDur(cfg.JobTTL, time.Hour))

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", defInt64(cfg.MaxUploadBytes, 52428800)) // 50MB

	cfg.DefaultThreshold = envFloat("DEFAULT_THRESHOLD", defFloat(cfg.DefaultThreshold, 0.60))
	cfg.DefaultMaxResults = envInt("DEFAULT_MAX_RESULTS", defInt(cfg.DefaultMaxResults, 20))
	cfg.DefaultMaxPages = envInt("DEFAULT_MAX_PAGES", defInt(cfg.DefaultMaxPages, 50))
	cfg.MaxLineGap = envFloat("MAX_LINE_GAP", defFloat(cfg.MaxLineGap, 30))
	cfg.MaxColumnGap = envFloat("MAX_COLUMN_GAP", defFloat(cfg.MaxColumnGap, 150))

	cfg.CacheSize = envInt("CACHE_SIZE", defInt(cfg.CacheSize, 64))
	cfg.NgramThreshold = envFloat("NGRAM_THRESHOLD", defFloat(cfg.NgramThreshold, 0.8))

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("SECTSEEK_API_KEY is required")
	}
	if c.DefaultThreshold < 0 || c.DefaultThreshold > 1 {
		return fmt.Errorf("default_threshold must be in [0,1], got %v", c.DefaultThreshold)
	}
	if c.DefaultMaxResults <= 0 {
		return fmt.Errorf("default_max_results must be positive")
	}
	if c.DefaultMaxPages <= 0 {
		return fmt.Errorf("default_max_pages must be positive")
	}
	return nil
}

func defStr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func defInt(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func defInt64(v, fallback int64) int64 {
	if v > 0 {
		return v
	}
	return fallback
}

func defFloat(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

func defDur(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
