package gate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/ganymede/pkg/cache"
	"mercator-hq/ganymede/pkg/ratelimit"
)

// countingProducer returns a producer that counts invocations and returns the
// given value and error.
func countingProducer(calls *atomic.Int64, value any, err error) Producer {
	return func(ctx context.Context) (any, error) {
		calls.Add(1)
		return value, err
	}
}

func testConfig() Config {
	return Config{
		Cache: cache.Config{Enabled: true, TTL: time.Hour, MaxSize: 100},
	}
}

// ============================================================================
// Fetch
// ============================================================================

func TestGate_FetchCachesResult(t *testing.T) {
	g := New(testConfig())
	defer g.Close()

	var calls atomic.Int64
	produce := countingProducer(&calls, "payload", nil)

	for i := 0; i < 3; i++ {
		value, err := g.Fetch(context.Background(), "resource-1", produce)
		if err != nil {
			t.Fatalf("Fetch() %d returned error: %v", i+1, err)
		}
		if value != "payload" {
			t.Errorf("Fetch() %d = %v, want payload", i+1, value)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("producer invoked %d times, want 1", calls.Load())
	}
}

func TestGate_FetchDistinctKeys(t *testing.T) {
	g := New(testConfig())
	defer g.Close()

	var calls atomic.Int64
	produce := countingProducer(&calls, "payload", nil)

	g.Fetch(context.Background(), "resource-1", produce)
	g.Fetch(context.Background(), "resource-2", produce)

	if calls.Load() != 2 {
		t.Errorf("producer invoked %d times for distinct keys, want 2", calls.Load())
	}
}

func TestGate_ProducerErrorPropagated(t *testing.T) {
	g := New(testConfig())
	defer g.Close()

	upstreamErr := errors.New("upstream unavailable")
	var calls atomic.Int64
	produce := countingProducer(&calls, nil, upstreamErr)

	_, err := g.Fetch(context.Background(), "resource-1", produce)
	if !errors.Is(err, upstreamErr) {
		t.Fatalf("Fetch() error = %v, want %v unchanged", err, upstreamErr)
	}

	// Failure is not cached; the next fetch retries the producer
	g.Fetch(context.Background(), "resource-1", produce)
	if calls.Load() != 2 {
		t.Errorf("producer invoked %d times after failure, want 2", calls.Load())
	}
}

func TestGate_EmptyResultNotCached(t *testing.T) {
	g := New(testConfig())
	defer g.Close()

	var calls atomic.Int64
	produce := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return "", nil // upstream fluke
		}
		return "recovered", nil
	}

	value, err := g.Fetch(context.Background(), "resource-1", produce)
	if err != nil {
		t.Fatalf("Fetch() returned error: %v", err)
	}
	if value != "" {
		t.Errorf("Fetch() = %v, want empty result passed through", value)
	}

	// The empty result was not cached, so the next fetch hits upstream
	value, _ = g.Fetch(context.Background(), "resource-1", produce)
	if value != "recovered" {
		t.Errorf("Fetch() after empty result = %v, want recovered", value)
	}
	if calls.Load() != 2 {
		t.Errorf("producer invoked %d times, want 2", calls.Load())
	}
}

func TestGate_RateLimitErrorPropagated(t *testing.T) {
	config := testConfig()
	config.RateLimit = ratelimit.Config{MaxRequests: 1, Interval: time.Minute}
	g := New(config)
	defer g.Close()

	var calls atomic.Int64
	produce := countingProducer(&calls, "payload", nil)

	if _, err := g.Fetch(context.Background(), "resource-1", produce); err != nil {
		t.Fatalf("first Fetch() returned error: %v", err)
	}

	// Second key misses the cache and finds the bucket empty
	_, err := g.Fetch(context.Background(), "resource-2", produce)
	var rle *ratelimit.RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("Fetch() error type = %T, want *ratelimit.RateLimitError", err)
	}
	if rle.Reason != ratelimit.ReasonExceeded {
		t.Errorf("Reason = %q, want %q", rle.Reason, ratelimit.ReasonExceeded)
	}

	// Rejection happens before the producer
	if calls.Load() != 1 {
		t.Errorf("producer invoked %d times, want 1", calls.Load())
	}

	// The cached key is still served without admission
	if _, err := g.Fetch(context.Background(), "resource-1", produce); err != nil {
		t.Errorf("cached Fetch() returned error: %v", err)
	}
}

func TestGate_CacheDisabled(t *testing.T) {
	g := New(Config{Cache: cache.Config{Enabled: false}})
	defer g.Close()

	var calls atomic.Int64
	produce := countingProducer(&calls, "payload", nil)

	g.Fetch(context.Background(), "resource-1", produce)
	g.Fetch(context.Background(), "resource-1", produce)

	if calls.Load() != 2 {
		t.Errorf("producer invoked %d times with cache disabled, want 2", calls.Load())
	}
}

func TestGate_NoLimiterForZeroConfig(t *testing.T) {
	g := New(testConfig())
	defer g.Close()

	if g.Limiter() != nil {
		t.Error("Limiter() != nil for zero rate limit config")
	}

	config := testConfig()
	config.RateLimit = ratelimit.Config{MaxRequests: 5, Interval: time.Second}
	g2 := New(config)
	defer g2.Close()

	if g2.Limiter() == nil {
		t.Error("Limiter() = nil for configured rate limit")
	}
}

// ============================================================================
// Single flight
// ============================================================================

func TestGate_SingleFlightCollapsesConcurrentMisses(t *testing.T) {
	config := testConfig()
	config.SingleFlight = true
	config.RateLimit = ratelimit.Config{MaxRequests: 1, Interval: time.Minute}
	g := New(config)
	defer g.Close()

	var calls atomic.Int64
	produce := func(ctx context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(100 * time.Millisecond)
		return "shared", nil
	}

	const waiters = 10
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, waiters)

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			value, err := g.Fetch(context.Background(), "resource-1", produce)
			if err == nil && value != "shared" {
				err = errors.New("wrong value")
			}
			errs <- err
		}()
	}

	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Fetch() returned error: %v", err)
		}
	}

	// All waiters share one producer invocation and one admission token
	if calls.Load() != 1 {
		t.Errorf("producer invoked %d times, want 1", calls.Load())
	}
	if g.Limiter().Available() != 0 {
		t.Errorf("Available() = %d, want 0 (single token consumed)", g.Limiter().Available())
	}
}

func TestGate_NoSingleFlightByDefault(t *testing.T) {
	g := New(testConfig())
	defer g.Close()

	var calls atomic.Int64
	release := make(chan struct{})
	produce := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "payload", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Fetch(context.Background(), "resource-1", produce)
		}()
	}

	// Both misses reach the producer before either result is cached
	deadline := time.Now().Add(time.Second)
	for calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	if calls.Load() != 2 {
		t.Errorf("producer invoked %d times without single flight, want 2", calls.Load())
	}
}

// ============================================================================
// Close
// ============================================================================

func TestGate_CloseIdempotent(t *testing.T) {
	config := testConfig()
	config.RateLimit = ratelimit.Config{MaxRequests: 1, Interval: time.Minute, Queue: true, MaxQueueSize: 10}
	g := New(config)

	if err := g.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Errorf("second Close() returned error: %v", err)
	}
}

// ============================================================================
// Metrics
// ============================================================================

func TestGate_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	config := testConfig()
	config.Metrics = NewMetrics(reg)
	config.RateLimit = ratelimit.Config{MaxRequests: 1, Interval: time.Minute}
	g := New(config)
	defer g.Close()

	produce := func(ctx context.Context) (any, error) { return "payload", nil }

	g.Fetch(context.Background(), "resource-1", produce) // miss + upstream
	g.Fetch(context.Background(), "resource-1", produce) // hit
	g.Fetch(context.Background(), "resource-2", produce) // miss + rejection

	if got := testutil.ToFloat64(config.Metrics.cacheHits); got != 1 {
		t.Errorf("cache_hits_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(config.Metrics.cacheMisses); got != 2 {
		t.Errorf("cache_misses_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(config.Metrics.upstreamCalls.WithLabelValues("success")); got != 1 {
		t.Errorf("upstream_calls_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(config.Metrics.rateLimitRejections.WithLabelValues(ratelimit.ReasonExceeded)); got != 1 {
		t.Errorf("rate_limit_rejections_total = %v, want 1", got)
	}
}

// ============================================================================
// Empty result detection
// ============================================================================

func TestIsEmptyResult(t *testing.T) {
	type payload struct{ Name string }
	var nilPtr *payload

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"string", "x", false},
		{"empty slice", []string{}, true},
		{"nil slice", []string(nil), true},
		{"slice", []string{"a"}, false},
		{"empty map", map[string]int{}, true},
		{"map", map[string]int{"a": 1}, false},
		{"nil pointer", nilPtr, true},
		{"pointer", &payload{Name: "x"}, false},
		{"zero int", 0, false},
		{"false", false, false},
		{"struct", payload{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmptyResult(tt.value); got != tt.want {
				t.Errorf("isEmptyResult(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
