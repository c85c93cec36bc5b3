package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Vision    VisionConfig    `mapstructure:"vision"`
	Clinical  ClinicalConfig  `mapstructure:"clinical"`
	Cache     CacheConfig     `mapstructure:"cache"`
	History   HistoryConfig   `mapstructure:"history"`
	Health    HealthConfig    `mapstructure:"health"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	StaticDir    string        `mapstructure:"static_dir"`
}

// UploadConfig constrains what the analyze endpoint accepts.
type UploadConfig struct {
	MaxSizeBytes      int64    `mapstructure:"max_size_bytes"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// VisionConfig represents the external vision model configuration. An empty
// APIKey means the external classifier is not configured and every request
// uses the fallback path.
type VisionConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens"`
}

// ClinicalConfig points at the static clinical reference dataset.
type ClinicalConfig struct {
	DataPath      string `mapstructure:"data_path"`
	InsightsCache int    `mapstructure:"insights_cache"`
}

// CacheConfig represents the optional redis cache for external
// classification results.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	RedisURL   string        `mapstructure:"redis_url"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
}

// HistoryConfig controls the persisted analysis history.
type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	DBPath     string `mapstructure:"db_path"`
	MaxEntries int    `mapstructure:"max_entries"`
}

// HealthConfig holds system resource thresholds for overload rejection.
type HealthConfig struct {
	MemoryThresholdPercent float64 `mapstructure:"memory_threshold_percent"`
	CPUThresholdPercent    float64 `mapstructure:"cpu_threshold_percent"`
	DiskThresholdPercent   float64 `mapstructure:"disk_threshold_percent"`
	RetryAfterSeconds      int     `mapstructure:"retry_after_seconds"`
}

// RateLimitConfig represents per-client request throttling
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
