package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// New creates a cache instance based on the cache type
func New(cacheType string, maxBytes int64, ttl time.Duration, log *zap.Logger) (Cache, error) {
	switch cacheType {
	case "memory":
		log.Info("Using memory edge cache", zap.Int64("max_bytes", maxBytes), zap.Duration("ttl", ttl))
		return NewMemoryCache(maxBytes, ttl), nil
	case "ristretto":
		log.Info("Using ristretto edge cache", zap.Int64("max_bytes", maxBytes), zap.Duration("ttl", ttl))
		return NewRistrettoCache(maxBytes, ttl)
	case "disabled":
		log.Info("Edge cache disabled")
		return NewNoopCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s (supported: memory, ristretto, disabled)", cacheType)
	}
}
