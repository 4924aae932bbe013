// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"coin_backend/internal/feature/coins/adapters"
	"coin_backend/internal/feature/coins/usecase"
	"coin_backend/internal/platform/cache"
)

// CacheNamespace is the Redis key prefix of the coin query cache.
const CacheNamespace = "coins"

// NewCoinRepository creates a CoinRepository implementation.
// If Redis is available, the GORM store is wrapped with a read-through cache.
// Otherwise, the store is returned as is.
func NewCoinRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) usecase.CoinRepository {
	repo := adapters.NewCoinRepository(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingCoinRepository(rdb, ttl, repo, CacheNamespace)
}
