// Package cache provides a bounded in-memory cache with per-entry TTL
// expiration and least-recently-used eviction.
//
// # Overview
//
// The cache fronts expensive upstream calls: repeated lookups for the same
// key are served from memory until the entry expires or is evicted. Capacity
// is enforced before every insertion, so the cache never exceeds its
// configured maximum size.
//
// # Eviction
//
// Recency order is maintained as an explicit doubly-linked list
// (container/list) over entries plus a map index, giving O(1) "move to
// most-recent" on reads and O(1) "evict least-recent" on inserts. Expiration
// is enforced lazily: an expired entry is treated as absent by every read and
// removed as a side effect of being touched. Prune is the only eager sweep
// and is caller-invoked; PruneScheduler can run it on a cron schedule for
// callers who want proactive memory reclamation.
//
// # Thread Safety
//
// All operations are thread-safe using a single mutex held only across the
// short lookup/evict critical section. No operation blocks.
package cache
