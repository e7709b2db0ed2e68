package cache

import (
	"fmt"

	"github.com/opensight-finance/kestrel/internal/domain"
)

// New creates a new cache based on configuration.
// "memory" returns the in-process LRU. "redis" returns a shared cache
// so several dashboard replicas reuse one warehouse load.
func New(cfg domain.CacheConfig) (domain.Cache, error) {
	switch cfg.Type {
	case "memory":
		return NewLRUCache(cfg.LocalMaxSize), nil

	case "redis":
		return NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}
