// Package fetch - cache.go provides an in-memory fetch cache keyed on normalized URLs.
package fetch

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a fetched page stays fresh.
const DefaultCacheTTL = 15 * time.Minute

// Cache wraps URL fetching with an in-memory cache.
// Concurrent fetches of the same normalized URL are collapsed into one request.
type Cache struct {
	opts  *Options
	ttl   time.Duration
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result   *Result
	storedAt time.Time
}

// NewCache creates a fetch cache. A zero ttl uses DefaultCacheTTL.
func NewCache(opts *Options, ttl time.Duration) *Cache {
	if opts == nil {
		opts = DefaultOptions()
	}
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		opts:    opts,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Fetch retrieves a URL, serving fresh cached content when available.
func (c *Cache) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	key, err := NormalizeURL(urlStr)
	if err != nil {
		return nil, err
	}

	if result, ok := c.lookup(key); ok {
		return result, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under singleflight: a concurrent caller may have filled the entry.
		if result, ok := c.lookup(key); ok {
			return result, nil
		}
		result, err := URL(ctx, key, c.opts)
		if err != nil {
			return nil, err
		}
		c.store(key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// Invalidate drops the cached entry for a URL, forcing a re-fetch on next request.
func (c *Cache) Invalidate(urlStr string) {
	key, err := NormalizeURL(urlStr)
	if err != nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache) lookup(key string) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Since(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.result, true
}

func (c *Cache) store(key string, result *Result) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{result: result, storedAt: time.Now()}
	c.mu.Unlock()
}

// NormalizeURL canonicalizes a listing URL for use as a cache key:
// lowercased scheme and host, fragment dropped, tracking parameters removed,
// remaining query sorted deterministically.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	// Reuse the fetcher's validation so callers get the same invalid-URL error.
	parsed, err := parseListingURL(raw)
	if err != nil {
		return "", err
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	q := parsed.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" {
			q.Del(k)
		}
	}
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	parsed.RawQuery = q.Encode()

	return parsed.String(), nil
}
