package cache

import "time"

// Cache is a minimal key-value cache with optional per-entry TTL.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	Get(key K) (V, bool)

	// Set stores the value. ttl <= 0 means the entry never expires.
	Set(key K, value V, ttl time.Duration)

	// GetOrSet returns the live value for key, or stores and returns the one built by create.
	GetOrSet(key K, ttl time.Duration, create func() V) V

	Delete(key K)

	Has(key K) bool

	// Keys lists the keys of non-expired entries in no particular order.
	Keys() []K

	// Len returns the number of non-expired entries.
	Len() int

	Clear()

	// PurgeExpired removes expired entries.
	PurgeExpired()
}
