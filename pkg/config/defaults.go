package config

import "time"

// Default values for configuration fields.
const (
	// Cache defaults
	DefaultCacheEnabled = true
	DefaultCacheTTL     = time.Hour
	DefaultCacheMaxSize = 1000

	// Rate limit defaults
	DefaultRateLimitEnabled      = true
	DefaultRateLimitMaxRequests  = 50
	DefaultRateLimitInterval     = time.Second
	DefaultRateLimitQueue        = true
	DefaultRateLimitMaxQueueSize = 100
)

// ApplyDefaults fills in default values for any unset configuration fields.
// Pointer fields are left non-nil afterwards so later reads never have to
// re-apply defaults.
func ApplyDefaults(cfg *Config) {
	// Cache defaults
	if cfg.Cache.Enabled == nil {
		cfg.Cache.Enabled = boolPtr(DefaultCacheEnabled)
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.MaxSize == nil {
		cfg.Cache.MaxSize = intPtr(DefaultCacheMaxSize)
	}

	// Rate limit defaults
	if cfg.RateLimit.Enabled == nil {
		cfg.RateLimit.Enabled = boolPtr(DefaultRateLimitEnabled)
	}
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = DefaultRateLimitMaxRequests
	}
	if cfg.RateLimit.Interval == 0 {
		cfg.RateLimit.Interval = DefaultRateLimitInterval
	}
	if cfg.RateLimit.Queue == nil {
		cfg.RateLimit.Queue = boolPtr(DefaultRateLimitQueue)
	}
	if cfg.RateLimit.MaxQueueSize == nil {
		cfg.RateLimit.MaxQueueSize = intPtr(DefaultRateLimitMaxQueueSize)
	}
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
