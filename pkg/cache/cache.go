package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config configures the cache behavior.
type Config struct {
	// Enabled enables caching. A disabled cache misses on every Get and
	// ignores Set, so callers need no special casing.
	Enabled bool

	// TTL is the default time to live for entries. Zero or negative means
	// entries never expire unless a per-entry TTL is given.
	TTL time.Duration

	// MaxSize is the maximum number of entries. A size of 0 is a valid
	// degenerate configuration: every insertion evicts down to zero first,
	// effectively disabling caching.
	MaxSize int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		TTL:     time.Hour,
		MaxSize: 1000,
	}
}

// entry is a cached value with its expiration. Entries are owned exclusively
// by the cache and never escape it.
type entry struct {
	key       string
	value     any
	expiresAt time.Time // zero = no expiry
}

// Cache is a thread-safe key/value store with TTL expiration and LRU
// eviction. The recency list orders entries front (least recently used) to
// back (most recently used); the front element is always the first eviction
// candidate.
type Cache struct {
	config  Config
	entries map[string]*list.Element
	order   *list.List // of *entry
	mu      sync.Mutex

	// now is the clock source, overridable in tests.
	now func() time.Time
}

// New creates a new cache with the given configuration. Configuration is
// immutable for the lifetime of the cache.
func New(config Config) *Cache {
	return &Cache{
		config:  config,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Get retrieves a value from the cache.
//
// Returns (value, true) if the entry exists and has not expired, marking it
// most recently used. An expired entry is evicted as a side effect and
// reported as absent.
func (c *Cache) Get(key string) (any, bool) {
	if !c.config.Enabled {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	e := el.Value.(*entry)
	if c.expired(e) {
		c.removeElement(el)
		return nil, false
	}

	c.order.MoveToBack(el)
	return e.value, true
}

// Set stores a value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.TTL)
}

// SetWithTTL stores a value under key with an explicit TTL.
//
// Overwriting an existing key replaces its value and expiry and counts as a
// recency touch, not as a new capacity-consuming entry. Otherwise the least
// recently used entries are evicted until the cache is below capacity before
// the new entry is inserted.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToBack(el)
		return
	}

	// Enforce capacity before insertion. A capacity of 0 never stores
	// anything, keeping the size bound intact in the degenerate case.
	for c.order.Len() >= c.config.MaxSize && c.order.Len() > 0 {
		c.removeElement(c.order.Front())
	}
	if c.config.MaxSize <= 0 {
		return
	}

	c.entries[key] = c.order.PushBack(&entry{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	})
}

// Has reports whether key is present and unexpired. It shares Get's expiry
// semantics, including the recency touch and lazy eviction.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes an entry if present. Returns true if an entry was removed.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeElement(el)
	return true
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Size returns the number of entries currently stored. Expired entries that
// have not been touched or pruned still count.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Prune eagerly removes every expired entry and returns the number removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []*list.Element
	for el := c.order.Front(); el != nil; el = el.Next() {
		if c.expired(el.Value.(*entry)) {
			stale = append(stale, el)
		}
	}

	for _, el := range stale {
		c.removeElement(el)
	}
	return len(stale)
}

// expired reports whether e is past its expiration. Caller must hold lock.
func (c *Cache) expired(e *entry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

// removeElement removes an element from both the recency list and the index.
// Caller must hold lock.
func (c *Cache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*entry).key)
}
