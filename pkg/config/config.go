package config

import (
	"time"

	"mercator-hq/ganymede/pkg/cache"
	"mercator-hq/ganymede/pkg/gate"
	"mercator-hq/ganymede/pkg/ratelimit"
)

// Config is the root configuration for the gated cache layer.
type Config struct {
	// Cache configures the TTL/LRU result cache.
	Cache CacheConfig `yaml:"cache"`

	// RateLimit configures admission throttling.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Maintenance configures scheduled cache pruning.
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// CacheConfig configures the result cache.
//
// Boolean and size fields are pointers so that "not set" can be
// distinguished from an explicit zero when applying defaults: a max_size of
// 0 is a valid degenerate configuration, not an omission.
type CacheConfig struct {
	// Enabled enables caching. Default: true.
	Enabled *bool `yaml:"enabled"`

	// TTL is the default time to live for entries. Default: 1 hour.
	TTL time.Duration `yaml:"ttl"`

	// MaxSize is the maximum number of entries. Default: 1000.
	MaxSize *int `yaml:"max_size"`
}

// RateLimitConfig configures admission throttling.
type RateLimitConfig struct {
	// Enabled enables rate limiting. Default: true.
	Enabled *bool `yaml:"enabled"`

	// MaxRequests is the number of admissions granted per interval.
	// Default: 50.
	MaxRequests int `yaml:"max_requests"`

	// Interval is the refill interval. Default: 1 second.
	Interval time.Duration `yaml:"interval"`

	// Queue enables queuing callers when no token is available.
	// Default: true.
	Queue *bool `yaml:"queue"`

	// MaxQueueSize bounds the number of queued callers. Default: 100.
	MaxQueueSize *int `yaml:"max_queue_size"`
}

// MaintenanceConfig configures scheduled cache pruning.
type MaintenanceConfig struct {
	// PruneSchedule is a cron expression for eager expiry sweeps.
	// Empty disables scheduled pruning (expiry stays lazy on read).
	PruneSchedule string `yaml:"prune_schedule"`
}

// CacheConfig converts the YAML configuration into a cache.Config.
// ApplyDefaults must have been called first.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Enabled: boolValue(c.Cache.Enabled, DefaultCacheEnabled),
		TTL:     c.Cache.TTL,
		MaxSize: intValue(c.Cache.MaxSize, DefaultCacheMaxSize),
	}
}

// RateLimitConfig converts the YAML configuration into a ratelimit.Config.
// A disabled rate limiter converts to the zero Config, which the gate treats
// as "no limit". ApplyDefaults must have been called first.
func (c *Config) RateLimitConfig() ratelimit.Config {
	if !boolValue(c.RateLimit.Enabled, DefaultRateLimitEnabled) {
		return ratelimit.Config{}
	}
	return ratelimit.Config{
		MaxRequests:  c.RateLimit.MaxRequests,
		Interval:     c.RateLimit.Interval,
		Queue:        boolValue(c.RateLimit.Queue, DefaultRateLimitQueue),
		MaxQueueSize: intValue(c.RateLimit.MaxQueueSize, DefaultRateLimitMaxQueueSize),
	}
}

// GateConfig converts the YAML configuration into a gate.Config.
func (c *Config) GateConfig() gate.Config {
	return gate.Config{
		Cache:     c.CacheConfig(),
		RateLimit: c.RateLimitConfig(),
	}
}

func boolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func intValue(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
