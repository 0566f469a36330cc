package api

import (
	"context"
	"encoding/json"
	"time"

	"hobbyhub/internal/client/storage"
)

// cacheEntry is what a cached GET is stored as. Entries are never evicted, only
// overwritten or ignored once stale.
type cacheEntry struct {
	Data   json.RawMessage `json:"data"`
	Expiry int64           `json:"expiry"` // unix millis
}

func (e cacheEntry) expired(now time.Time) bool {
	return now.UnixMilli() > e.Expiry
}

// cacheKey is the URL plus the JSON-encoded params. encoding/json sorts map keys,
// so equal params always produce the same key.
func (c *Client) cacheKey(path string, params map[string]string) string {
	if params == nil {
		params = map[string]string{}
	}
	encoded, _ := json.Marshal(params)
	return storage.CachePrefix + c.resolve(path) + string(encoded)
}

func (c *Client) readCache(ctx context.Context, key string) (cacheEntry, bool) {
	var entry cacheEntry
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", "key", key, "error", err)
		return entry, false
	}
	if !ok {
		return entry, false
	}
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.log.Warn("dropping unreadable cache entry", "key", key, "error", err)
		return entry, false
	}
	return entry, true
}

// writeCache stores env and returns it re-read from the stored bytes, so a network
// response and a later cache hit for the same key are identical.
func (c *Client) writeCache(ctx context.Context, key string, env *Envelope) *Envelope {
	data, err := json.Marshal(env)
	if err != nil {
		return env
	}
	raw, err := json.Marshal(cacheEntry{Data: data, Expiry: c.now().Add(c.cacheTTL).UnixMilli()})
	if err != nil {
		return env
	}
	if err := c.store.Set(ctx, key, string(raw)); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
	if stored, err := normalize(data); err == nil {
		return stored
	}
	return env
}

// InvalidateCache drops cached GETs whose URL starts with the resolved pathPrefix.
func (c *Client) InvalidateCache(ctx context.Context, pathPrefix string) error {
	prefix := storage.CachePrefix + c.resolve(pathPrefix)
	keys, err := storage.KeysWithPrefix(ctx, c.store, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.store.Remove(ctx, keys...)
}

// ClearCache drops every cached response.
func (c *Client) ClearCache(ctx context.Context) error {
	keys, err := storage.KeysWithPrefix(ctx, c.store, storage.CachePrefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.store.Remove(ctx, keys...)
}
