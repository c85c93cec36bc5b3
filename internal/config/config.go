package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/skin-wellness-navigator/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/skin-wellness-navigator/")

	viper.SetEnvPrefix("SWN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and environment variables suffice.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.static_dir", "web/static")

	// Upload defaults
	viper.SetDefault("upload.max_size_bytes", 16*1024*1024)
	viper.SetDefault("upload.allowed_extensions", []string{"png", "jpg", "jpeg"})

	// External vision model defaults
	viper.SetDefault("vision.api_key", "")
	viper.SetDefault("vision.base_url", "")
	viper.SetDefault("vision.model", "gpt-4o")
	viper.SetDefault("vision.timeout", "15s")
	viper.SetDefault("vision.max_tokens", 1024)

	// Clinical dataset defaults
	viper.SetDefault("clinical.data_path", "clinical.csv")
	viper.SetDefault("clinical.insights_cache", 16)

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.default_ttl", "24h")

	// History defaults
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.db_path", "data/history.db")
	viper.SetDefault("history.max_entries", 100)

	// Health thresholds
	viper.SetDefault("health.memory_threshold_percent", 90)
	viper.SetDefault("health.cpu_threshold_percent", 90)
	viper.SetDefault("health.disk_threshold_percent", 90)
	viper.SetDefault("health.retry_after_seconds", 30)

	// Rate limiting defaults
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 5)
	viper.SetDefault("rate_limit.burst", 10)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Upload.MaxSizeBytes <= 0 {
		return fmt.Errorf("upload max size must be positive")
	}
	if len(config.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one allowed upload extension is required")
	}

	if config.Vision.Timeout <= 0 {
		return fmt.Errorf("vision timeout must be positive")
	}

	if config.Cache.Enabled && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache is enabled")
	}

	if config.History.Enabled {
		if config.History.DBPath == "" {
			return fmt.Errorf("history db path is required when history is enabled")
		}
		if config.History.MaxEntries <= 0 {
			return fmt.Errorf("history max entries must be positive")
		}
	}

	if config.Health.MemoryThresholdPercent <= 0 || config.Health.MemoryThresholdPercent > 100 {
		return fmt.Errorf("invalid memory threshold: %v", config.Health.MemoryThresholdPercent)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// ExternalClassifierConfigured reports whether an API key for the external
// vision model is present. Without one, no network attempt is ever made.
func (m *Manager) ExternalClassifierConfigured() bool {
	return m.config.Vision.APIKey != ""
}
