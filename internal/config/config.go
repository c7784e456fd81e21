package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration. Values resolve in three
// layers: built-in defaults, then the optional YAML file named by
// CONFIG_FILE, then environment variables.
type Config struct {
	Host               string        `yaml:"host"`
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`

	// Extraction parameters.
	MaxWorkers   int `yaml:"max_workers"`
	GrayLevels   int `yaml:"gray_levels"`
	MaxRunLength int `yaml:"max_run_length"`
}

// ServerAddress joins host and port for the HTTP listener.
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

// Load resolves the layered configuration and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024,
		MaxWorkers:         0,
		GrayLevels:         256,
		MaxRunLength:       50,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Host = getEnvOrDefault("HOST", c.Host)
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.RequestTimeout = parseDurationOrDefault("REQUEST_TIMEOUT", c.RequestTimeout)
	c.MaxRequestBodySize = parseInt64OrDefault("MAX_REQUEST_BODY_SIZE", c.MaxRequestBodySize)
	c.MaxWorkers = parseIntOrDefault("MAX_WORKERS", c.MaxWorkers)
	c.GrayLevels = parseIntOrDefault("GRAY_LEVELS", c.GrayLevels)
	c.MaxRunLength = parseIntOrDefault("MAX_RUN_LENGTH", c.MaxRunLength)
}

func (c *Config) validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxWorkers < 0 {
		return fmt.Errorf("MAX_WORKERS must be >= 0 (got %d)", c.MaxWorkers)
	}
	if c.GrayLevels < 2 || c.GrayLevels > 256 {
		return fmt.Errorf("GRAY_LEVELS must be in [2, 256] (got %d)", c.GrayLevels)
	}
	if c.MaxRunLength < 1 {
		return fmt.Errorf("MAX_RUN_LENGTH must be >= 1 (got %d)", c.MaxRunLength)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
