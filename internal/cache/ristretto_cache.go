package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// RistrettoCache backs the edge cache with ristretto. Entry cost is the
// body size, so maxBytes bounds total cached payload the way the
// memory cache does; admission and eviction policy come from ristretto.
type RistrettoCache struct {
	c   *ristretto.Cache[string, *Entry]
	ttl time.Duration
}

func NewRistrettoCache(maxBytes int64, ttl time.Duration) (*RistrettoCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *Entry]{
		NumCounters: 1e6,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &RistrettoCache{c: c, ttl: ttl}, nil
}

func (r *RistrettoCache) Get(key string) (*Entry, bool) {
	return r.c.Get(key)
}

func (r *RistrettoCache) Set(key string, entry *Entry) {
	r.c.SetWithTTL(key, entry, int64(len(entry.Body)), r.ttl)
}

func (r *RistrettoCache) Clear() {
	r.c.Clear()
}
