// Package gate coordinates a TTL/LRU cache and a token-bucket rate limiter
// in front of a rate-limited upstream call.
//
// # Overview
//
// A Gate executes one logical "fetch-or-compute" per request:
//
//  1. Cache lookup - on hit the cached value is returned; no admission is
//     consumed and the producer is never invoked.
//  2. Admission - the rate limiter is acquired; rate-limit failures propagate
//     to the caller unchanged and the producer is never invoked.
//  3. Producer - the caller-supplied upstream operation runs; its failures
//     propagate unchanged and nothing is cached.
//  4. Populate - non-empty results are cached under the key with the default
//     TTL. Empty results are not cached, so an upstream fluke is retried on
//     the next call instead of being frozen in cache for the full TTL.
//
// The producer is a black box: the gate does not retry it, inspect its error
// type, or impose a timeout on it. Any retry or timeout policy belongs to the
// caller or the producer itself.
//
// # Concurrent misses
//
// By default there is no per-key in-flight deduplication: concurrent cache
// misses for the same key each consume an admission and invoke the producer
// independently. Setting Config.SingleFlight collapses concurrent misses for
// one key into a single producer invocation whose result is shared.
//
// # Usage
//
//	g := gate.New(gate.Config{
//	    Cache:     cache.DefaultConfig(),
//	    RateLimit: ratelimit.DefaultConfig(),
//	})
//	defer g.Close()
//
//	value, err := g.Fetch(ctx, "user:42", func(ctx context.Context) (any, error) {
//	    return client.LookupUser(ctx, 42)
//	})
package gate
