package cache

import (
	"fmt"

	"github.com/supplylens/backend/internal/domain"
	"go.uber.org/zap"
)

// Cache backends
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Config selects and configures the cache backend
type Config struct {
	Type      string
	RedisURL  string
	KeyPrefix string
	// FallbackToMemory uses the in-memory cache when Redis cannot be reached
	FallbackToMemory bool
}

// New creates the configured cache backend
func New(cfg Config, logger *zap.Logger) (domain.CacheRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Type {
	case "", TypeMemory:
		return NewMemoryCache(), nil
	case TypeRedis:
		redisCache, err := NewRedisCache(cfg.RedisURL, WithKeyPrefix(cfg.KeyPrefix), WithLogger(logger))
		if err == nil {
			return redisCache, nil
		}
		if !cfg.FallbackToMemory {
			return nil, err
		}
		logger.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
		return NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
