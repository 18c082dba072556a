// Package ratelimit implements a token-bucket rate limiter with bounded
// FIFO queuing for callers that prefer to wait over being rejected.
//
// # Algorithm
//
// The bucket holds up to MaxRequests tokens and refills in whole intervals:
// after each elapsed Interval the bucket is topped back up to capacity. The
// refill anchor advances by whole intervals rather than jumping to the
// current time, so fractional interval progress is never lost. Every
// operation that reads or mutates the token count refills first.
//
//  1. Compute elapsed whole intervals since the refill anchor
//  2. Add intervals*capacity tokens (up to capacity), advance the anchor
//  3. Grant queued admissions in strict FIFO order while tokens remain
//  4. Serve the current caller from whatever tokens are left
//
// # Queuing
//
// Acquire blocks when no token is available and queuing is enabled: the
// caller is parked on a one-shot admission handle that is resolved exactly
// once, either with a grant or with a *RateLimitError when the limiter is
// reset or disposed. A lazy ticker goroutine (period Interval) is started on
// first enqueue and stopped once the queue drains, so queued callers are
// eventually granted even when no further operations arrive.
//
// # Thread Safety
//
// All operations are thread-safe. The mutex is held only across the short
// refill/drain/enqueue critical sections, never while a caller is parked.
package ratelimit
