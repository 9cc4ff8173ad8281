package capability

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	cacheNumCounters = 1e5
	cacheMaxCost     = 1e7 // ~10MB of cached results
	cacheBufferItems = 64
	cacheDefaultTTL  = 2 * time.Minute
)

// CachedAdapter wraps a read-only adapter with a ristretto result cache.
// Repeated identical calls within the TTL skip the provider entirely.
// Side-effecting capabilities must never be wrapped.
type CachedAdapter struct {
	name  string
	inner Adapter
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCachedAdapter wraps inner with a result cache keyed by capability name
// and arguments.
func NewCachedAdapter(name string, inner Adapter, ttl time.Duration) (*CachedAdapter, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = cacheDefaultTTL
	}
	return &CachedAdapter{name: name, inner: inner, cache: cache, ttl: ttl}, nil
}

// Execute serves from cache when possible, otherwise calls through and
// caches the result. Errors are never cached.
func (a *CachedAdapter) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	key := a.key(args)
	if key != "" {
		if value, found := a.cache.Get(key); found {
			if result, ok := value.(map[string]interface{}); ok {
				log.Printf("[CAPABILITY] Cache hit for %s", a.name)
				return result, nil
			}
		}
	}

	result, err := a.inner.Execute(ctx, args)
	if err != nil {
		return nil, err
	}
	if key != "" {
		a.cache.SetWithTTL(key, result, costOf(result), a.ttl)
	}
	return result, nil
}

// Wait flushes pending cache writes. Tests use it to make sets visible.
func (a *CachedAdapter) Wait() {
	a.cache.Wait()
}

// Close releases cache resources.
func (a *CachedAdapter) Close() {
	a.cache.Close()
}

// key serializes args deterministically. json.Marshal sorts map keys, so
// equal argument maps always produce equal keys.
func (a *CachedAdapter) key(args map[string]interface{}) string {
	raw, err := json.Marshal(args)
	if err != nil {
		return ""
	}
	return a.name + ":" + string(raw)
}

func costOf(result map[string]interface{}) int64 {
	raw, err := json.Marshal(result)
	if err != nil {
		return 256
	}
	return int64(len(raw)) + 64
}
