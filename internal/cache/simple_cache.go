package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

func (e entry[V]) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && at.After(e.expiresAt)
}

// SimpleCache is a map-backed cache with lazy expiry and optional locking.
// There is no background janitor; call PurgeExpired to reclaim memory.
type SimpleCache[K comparable, V any] struct {
	// nil means the cache is not goroutine-safe.
	mu *sync.RWMutex

	items map[K]entry[V]
	now   func() time.Time
}

// Options controls construction of a SimpleCache.
type Options struct {
	// ConcurrencySafe guards every operation with a RWMutex.
	ConcurrencySafe bool
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// NewSimpleCache constructs a SimpleCache.
func NewSimpleCache[K comparable, V any](opts Options) *SimpleCache[K, V] {
	var mu *sync.RWMutex
	if opts.ConcurrencySafe {
		mu = &sync.RWMutex{}
	}
	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}
	return &SimpleCache[K, V]{
		mu:    mu,
		items: make(map[K]entry[V]),
		now:   clock,
	}
}

func (c *SimpleCache[K, V]) lockR() func() {
	if c.mu == nil {
		return func() {}
	}
	c.mu.RLock()
	return c.mu.RUnlock
}

func (c *SimpleCache[K, V]) lockW() func() {
	if c.mu == nil {
		return func() {}
	}
	c.mu.Lock()
	return c.mu.Unlock
}

func (c *SimpleCache[K, V]) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(ttl)
}

// Get implements Cache.Get.
func (c *SimpleCache[K, V]) Get(key K) (V, bool) {
	unlock := c.lockR()
	defer unlock()

	var zero V
	e, ok := c.items[key]
	if !ok || e.expired(c.now()) {
		return zero, false
	}
	return e.value, true
}

// Set implements Cache.Set.
func (c *SimpleCache[K, V]) Set(key K, value V, ttl time.Duration) {
	unlock := c.lockW()
	defer unlock()
	c.items[key] = entry[V]{value: value, expiresAt: c.expiry(ttl)}
}

// GetOrSet implements Cache.GetOrSet. A hit slides the entry's expiry forward by ttl.
func (c *SimpleCache[K, V]) GetOrSet(key K, ttl time.Duration, create func() V) V {
	unlock := c.lockW()
	defer unlock()

	if e, ok := c.items[key]; ok && !e.expired(c.now()) {
		e.expiresAt = c.expiry(ttl)
		c.items[key] = e
		return e.value
	}
	value := create()
	c.items[key] = entry[V]{value: value, expiresAt: c.expiry(ttl)}
	return value
}

// Delete implements Cache.Delete.
func (c *SimpleCache[K, V]) Delete(key K) {
	unlock := c.lockW()
	defer unlock()
	delete(c.items, key)
}

// Has implements Cache.Has.
func (c *SimpleCache[K, V]) Has(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Keys implements Cache.Keys.
func (c *SimpleCache[K, V]) Keys() []K {
	unlock := c.lockR()
	defer unlock()

	at := c.now()
	keys := make([]K, 0, len(c.items))
	for k, e := range c.items {
		if !e.expired(at) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len implements Cache.Len.
func (c *SimpleCache[K, V]) Len() int {
	return len(c.Keys())
}

// Clear implements Cache.Clear.
func (c *SimpleCache[K, V]) Clear() {
	unlock := c.lockW()
	defer unlock()
	c.items = make(map[K]entry[V])
}

// PurgeExpired implements Cache.PurgeExpired.
func (c *SimpleCache[K, V]) PurgeExpired() {
	unlock := c.lockW()
	defer unlock()

	at := c.now()
	for k, e := range c.items {
		if e.expired(at) {
			delete(c.items, k)
		}
	}
}

var _ Cache[any, any] = (*SimpleCache[any, any])(nil)
