package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention GANYMEDE_SECTION_FIELD (e.g., GANYMEDE_CACHE_TTL) and always
// take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file (this already applies defaults)
//  2. Apply environment variable overrides
//  3. Re-validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format GANYMEDE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Cache overrides
	if val := os.Getenv("GANYMEDE_CACHE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Cache.Enabled = boolPtr(b)
		}
	}
	if val := os.Getenv("GANYMEDE_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if val := os.Getenv("GANYMEDE_CACHE_MAX_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Cache.MaxSize = intPtr(i)
		}
	}

	// Rate limit overrides
	if val := os.Getenv("GANYMEDE_RATE_LIMIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RateLimit.Enabled = boolPtr(b)
		}
	}
	if val := os.Getenv("GANYMEDE_RATE_LIMIT_MAX_REQUESTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.RateLimit.MaxRequests = i
		}
	}
	if val := os.Getenv("GANYMEDE_RATE_LIMIT_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.RateLimit.Interval = d
		}
	}
	if val := os.Getenv("GANYMEDE_RATE_LIMIT_QUEUE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RateLimit.Queue = boolPtr(b)
		}
	}
	if val := os.Getenv("GANYMEDE_RATE_LIMIT_MAX_QUEUE_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.RateLimit.MaxQueueSize = intPtr(i)
		}
	}

	// Maintenance overrides
	if val := os.Getenv("GANYMEDE_MAINTENANCE_PRUNE_SCHEDULE"); val != "" {
		cfg.Maintenance.PruneSchedule = val
	}
}
