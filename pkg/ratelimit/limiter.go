package ratelimit

import (
	"sync"
	"time"
)

// Config contains configuration for the rate limiter.
type Config struct {
	// MaxRequests is the bucket capacity: the number of admissions granted
	// per interval.
	MaxRequests int

	// Interval is the refill interval.
	Interval time.Duration

	// Queue enables queuing callers when no token is available. When
	// disabled, Acquire fails immediately instead of waiting.
	Queue bool

	// MaxQueueSize bounds the number of queued callers. Further callers fail
	// immediately with ReasonQueueFull.
	MaxQueueSize int
}

// DefaultConfig returns the default rate limiter configuration.
func DefaultConfig() Config {
	return Config{
		MaxRequests:  50,
		Interval:     time.Second,
		Queue:        true,
		MaxQueueSize: 100,
	}
}

// admission is one caller parked on token availability. The done channel is
// buffered so the limiter can resolve it without blocking; each admission is
// resolved exactly once, with nil on grant or a *RateLimitError on rejection.
type admission struct {
	done chan error
}

// Limiter is a token-bucket rate limiter with bounded FIFO queuing.
//
// The limiter is constructed once with immutable configuration and should be
// disposed when no longer needed so that queued callers are rejected
// deterministically rather than left parked forever.
type Limiter struct {
	capacity     int
	interval     time.Duration
	queueEnabled bool
	maxQueueSize int

	mu         sync.Mutex
	tokens     int
	lastRefill time.Time
	queue      []*admission
	ticking    bool
	stopTick   chan struct{}
	disposed   bool

	// now is the clock source, overridable in tests.
	now func() time.Time
}

// New creates a new rate limiter. The bucket starts full.
//
// Every field is optional: a non-positive MaxRequests or Interval, and a
// non-positive MaxQueueSize with queuing enabled, fall back to the
// DefaultConfig values.
//
// Example:
//
//	// 50 admissions per second, up to 100 callers queued
//	limiter := ratelimit.New(ratelimit.Config{
//	    MaxRequests:  50,
//	    Interval:     time.Second,
//	    Queue:        true,
//	    MaxQueueSize: 100,
//	})
//	defer limiter.Dispose()
func New(config Config) *Limiter {
	def := DefaultConfig()
	if config.MaxRequests <= 0 {
		config.MaxRequests = def.MaxRequests
	}
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.Queue && config.MaxQueueSize <= 0 {
		config.MaxQueueSize = def.MaxQueueSize
	}

	l := &Limiter{
		capacity:     config.MaxRequests,
		interval:     config.Interval,
		queueEnabled: config.Queue,
		maxQueueSize: config.MaxQueueSize,
		tokens:       config.MaxRequests,
		now:          time.Now,
	}
	l.lastRefill = l.now()
	return l
}

// Acquire obtains one admission, blocking until it is granted.
//
// If a token is available it is consumed and Acquire returns immediately.
// Otherwise the caller is queued (when queuing is enabled and the queue has
// room) and parked until a refill grants it, in strict FIFO order. Acquire
// fails with a *RateLimitError when queuing is disabled, the queue is full,
// the limiter is disposed, or the limiter is reset/disposed while the caller
// is queued. No token is consumed on failure, and Acquire never retries.
//
// There is no per-call cancellation: Reset and Dispose are the only ways to
// force-resolve queued callers, and they resolve all of them.
func (l *Limiter) Acquire() error {
	l.mu.Lock()
	l.refillLocked()

	if l.tokens > 0 {
		l.tokens--
		l.mu.Unlock()
		return nil
	}

	if l.disposed {
		l.mu.Unlock()
		return &RateLimitError{Reason: ReasonDisposed, Limit: l.capacity}
	}

	if !l.queueEnabled {
		l.mu.Unlock()
		return &RateLimitError{Reason: ReasonExceeded, Limit: l.capacity}
	}

	if len(l.queue) >= l.maxQueueSize {
		err := &RateLimitError{
			Reason:    ReasonQueueFull,
			Limit:     l.capacity,
			QueueSize: len(l.queue),
		}
		l.mu.Unlock()
		return err
	}

	a := &admission{done: make(chan error, 1)}
	l.queue = append(l.queue, a)
	l.ensureTickerLocked()
	l.mu.Unlock()

	// Park until granted or rejected. The lock is never held here.
	return <-a.done
}

// TryAcquire attempts to obtain one admission without blocking or queuing.
// Returns true if a token was consumed.
func (l *Limiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillLocked()
	if l.tokens > 0 {
		l.tokens--
		return true
	}
	return false
}

// Available returns the number of tokens currently available, refilling
// first so the observation is never stale.
func (l *Limiter) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillLocked()
	return l.tokens
}

// QueueSize returns the number of queued callers.
func (l *Limiter) QueueSize() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Capacity returns the configured bucket capacity.
func (l *Limiter) Capacity() int {
	return l.capacity
}

// Reset refills the bucket to capacity, resets the refill anchor, stops the
// refill ticker, and rejects every queued caller with ReasonReset in FIFO
// order.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetLocked(ReasonReset)
}

// Dispose resets the limiter and prevents the refill ticker from ever
// starting again: queued callers are rejected with ReasonDisposed, and later
// Acquire calls fail fast instead of queuing when no token is available.
// Dispose is idempotent.
func (l *Limiter) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.disposed {
		return
	}
	l.disposed = true
	l.resetLocked(ReasonDisposed)
}

// resetLocked restores a full bucket and rejects all queued admissions with
// the given reason. Caller must hold lock.
func (l *Limiter) resetLocked(reason string) {
	l.tokens = l.capacity
	l.lastRefill = l.now()
	l.stopTickerLocked()

	for _, a := range l.queue {
		a.done <- &RateLimitError{Reason: reason, Limit: l.capacity}
	}
	l.queue = nil
}

// refillLocked adds whole-interval refills and drains the queue. The anchor
// advances by whole intervals, not to now, so partial interval progress
// carries over. Caller must hold lock.
func (l *Limiter) refillLocked() {
	elapsed := l.now().Sub(l.lastRefill)
	if l.interval <= 0 || elapsed < l.interval {
		return
	}

	intervals := int(elapsed / l.interval)
	l.tokens += intervals * l.capacity
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
	l.lastRefill = l.lastRefill.Add(time.Duration(intervals) * l.interval)

	l.drainLocked()
}

// drainLocked grants queued admissions in strict FIFO order while tokens
// remain. Tokens never sit idle while callers are queued. Caller must hold
// lock.
func (l *Limiter) drainLocked() {
	for len(l.queue) > 0 && l.tokens > 0 {
		a := l.queue[0]
		l.queue = l.queue[1:]
		l.tokens--
		a.done <- nil
	}
}

// ensureTickerLocked starts the refill ticker if it is not already running.
// Without it, nothing would invoke refill again once all callers are parked.
// Caller must hold lock.
func (l *Limiter) ensureTickerLocked() {
	if l.ticking {
		return
	}
	l.ticking = true
	l.stopTick = make(chan struct{})
	go l.tickLoop(l.stopTick)
}

// stopTickerLocked stops the refill ticker if running. Caller must hold lock.
func (l *Limiter) stopTickerLocked() {
	if !l.ticking {
		return
	}
	close(l.stopTick)
	l.ticking = false
}

// tickLoop periodically refills while callers are queued. It stops itself
// once the queue drains, or when stop is closed by reset/dispose. The stop
// channel identifies this loop's generation: a loop never clears the ticking
// flag of a successor started after it was stopped.
func (l *Limiter) tickLoop(stop chan struct{}) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			l.refillLocked()
			if len(l.queue) == 0 {
				if l.stopTick == stop {
					l.ticking = false
				}
				l.mu.Unlock()
				return
			}
			l.mu.Unlock()
		}
	}
}
