package gate

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"mercator-hq/ganymede/pkg/cache"
	"mercator-hq/ganymede/pkg/ratelimit"
)

// Producer performs the actual upstream work being gated and cached. The
// context is the producer's to honor; the gate imposes no timeout of its own.
type Producer func(ctx context.Context) (any, error)

// Config contains configuration for the gate.
type Config struct {
	// Cache configures the result cache. A disabled cache skips the lookup
	// and populate steps.
	Cache cache.Config

	// RateLimit configures admission throttling. Zero MaxRequests or
	// Interval means no rate limiting.
	RateLimit ratelimit.Config

	// SingleFlight collapses concurrent cache misses for the same key into a
	// single producer invocation (and a single admission) whose result is
	// shared by all waiters.
	SingleFlight bool

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics receives gate telemetry. Optional.
	Metrics *Metrics
}

// Gate sequences "check cache, acquire admission, invoke upstream, populate
// cache" for each logical request. The cache and limiter are privately owned
// by the gate but remain usable standalone through their own packages.
type Gate struct {
	cache        *cache.Cache
	cacheEnabled bool
	limiter      *ratelimit.Limiter
	group        *singleflight.Group
	logger       *slog.Logger
	metrics      *Metrics
}

// New creates a new gate with the given configuration.
func New(config Config) *Gate {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gate{
		cache:        cache.New(config.Cache),
		cacheEnabled: config.Cache.Enabled,
		logger:       logger.With("component", "gate"),
		metrics:      config.Metrics,
	}

	// Only non-zero limits are enforced.
	if config.RateLimit.MaxRequests > 0 && config.RateLimit.Interval > 0 {
		g.limiter = ratelimit.New(config.RateLimit)
	}

	if config.SingleFlight {
		g.group = &singleflight.Group{}
	}

	return g
}

// Fetch returns the value for key, serving it from cache when possible and
// otherwise invoking the producer under rate-limit admission.
//
// Failures are surfaced unchanged: a *ratelimit.RateLimitError when
// admission is denied, or whatever error the producer returned. Nothing is
// cached on failure, and empty results (nil, empty string, zero-length
// slice or map) are not cached on success.
func (g *Gate) Fetch(ctx context.Context, key string, produce Producer) (any, error) {
	if g.metrics != nil {
		start := time.Now()
		defer func() {
			g.metrics.ObserveFetchDuration(time.Since(start).Seconds())
		}()
	}

	if g.cacheEnabled {
		if value, ok := g.cache.Get(key); ok {
			g.logger.Debug("cache hit", "key", key)
			if g.metrics != nil {
				g.metrics.RecordCacheHit()
			}
			return value, nil
		}

		g.logger.Debug("cache miss", "key", key)
		if g.metrics != nil {
			g.metrics.RecordCacheMiss()
		}
	}

	if g.group != nil {
		value, err, _ := g.group.Do(key, func() (any, error) {
			return g.admitAndProduce(ctx, key, produce)
		})
		return value, err
	}

	return g.admitAndProduce(ctx, key, produce)
}

// admitAndProduce acquires admission, invokes the producer, and populates
// the cache on non-empty success.
func (g *Gate) admitAndProduce(ctx context.Context, key string, produce Producer) (any, error) {
	if g.limiter != nil {
		if err := g.limiter.Acquire(); err != nil {
			g.logger.Debug("admission rejected", "key", key, "error", err)
			if g.metrics != nil {
				var rle *ratelimit.RateLimitError
				if errors.As(err, &rle) {
					g.metrics.RecordRejection(rle.Reason)
				}
				g.metrics.UpdateQueueDepth(g.limiter.QueueSize())
			}
			return nil, err
		}
		if g.metrics != nil {
			g.metrics.UpdateQueueDepth(g.limiter.QueueSize())
		}
	}

	fetchID := uuid.NewString()
	g.logger.Debug("invoking upstream producer", "key", key, "fetch_id", fetchID)

	value, err := produce(ctx)
	if err != nil {
		if g.metrics != nil {
			g.metrics.RecordUpstreamCall(true)
		}
		g.logger.Debug("upstream producer failed",
			"key", key,
			"fetch_id", fetchID,
			"error", err,
		)
		return nil, err
	}

	if g.metrics != nil {
		g.metrics.RecordUpstreamCall(false)
	}

	if g.cacheEnabled && !isEmptyResult(value) {
		g.cache.Set(key, value)
	}

	return value, nil
}

// Cache returns the gate's cache for direct inspection or manipulation.
func (g *Gate) Cache() *cache.Cache {
	return g.cache
}

// Limiter returns the gate's rate limiter, or nil if rate limiting is not
// configured.
func (g *Gate) Limiter() *ratelimit.Limiter {
	return g.limiter
}

// Close disposes the rate limiter, rejecting any queued callers. Close is
// idempotent and always returns nil.
func (g *Gate) Close() error {
	if g.limiter != nil {
		g.limiter.Dispose()
	}
	return nil
}

// isEmptyResult reports whether a producer result should be skipped for
// caching: nil, an empty string, or a zero-length slice, map, or array. An
// empty result that is actually an upstream fluke should be retried on the
// next call rather than held in cache for the full TTL.
func isEmptyResult(value any) bool {
	if value == nil {
		return true
	}

	switch v := value.(type) {
	case string:
		return v == ""
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
