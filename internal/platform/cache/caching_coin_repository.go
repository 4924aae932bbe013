// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"coin_backend/internal/feature/coins/domain/entity"
	"coin_backend/internal/feature/coins/usecase"
)

const (
	defaultTTL       = 5 * time.Minute
	defaultNamespace = "coins"
	scanCount        = 200
)

// CachingCoinRepository decorates a CoinRepository with a Redis read-through cache.
// Every successful write drops the whole namespace, since any save or delete can
// change the result of every ordering.
type CachingCoinRepository struct {
	inner     usecase.CoinRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.CoinRepository = (*CachingCoinRepository)(nil)

// NewCachingCoinRepository decorates a CoinRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "coins".
// A nil client turns the decorator into a pass-through.
func NewCachingCoinRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CoinRepository, namespace string) *CachingCoinRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &CachingCoinRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindAll returns all coins, cached under <ns>:all.
func (c *CachingCoinRepository) FindAll(ctx context.Context) ([]entity.Coin, error) {
	return readThrough(ctx, c, c.key("all"), func() ([]entity.Coin, error) {
		return c.inner.FindAll(ctx)
	})
}

// FindAllOrderByNameDesc returns coins by name descending, cached under <ns>:name_desc.
func (c *CachingCoinRepository) FindAllOrderByNameDesc(ctx context.Context) ([]entity.Coin, error) {
	return readThrough(ctx, c, c.key("name_desc"), func() ([]entity.Coin, error) {
		return c.inner.FindAllOrderByNameDesc(ctx)
	})
}

// FindAllOrderByStartDateDesc returns one page by start date descending.
func (c *CachingCoinRepository) FindAllOrderByStartDateDesc(ctx context.Context, limit, offset int) ([]entity.Coin, error) {
	return readThrough(ctx, c, c.key("start_date_desc", limit, offset), func() ([]entity.Coin, error) {
		return c.inner.FindAllOrderByStartDateDesc(ctx, limit, offset)
	})
}

// FindAllOrderByDescriptionDescNameAsc returns coins by description descending, name ascending.
func (c *CachingCoinRepository) FindAllOrderByDescriptionDescNameAsc(ctx context.Context) ([]entity.Coin, error) {
	return readThrough(ctx, c, c.key("description_desc_name_asc"), func() ([]entity.Coin, error) {
		return c.inner.FindAllOrderByDescriptionDescNameAsc(ctx)
	})
}

// FindPage returns one page in insertion order.
func (c *CachingCoinRepository) FindPage(ctx context.Context, limit, offset int) ([]entity.Coin, error) {
	return readThrough(ctx, c, c.key("page", limit, offset), func() ([]entity.Coin, error) {
		return c.inner.FindPage(ctx, limit, offset)
	})
}

// FindByName returns the coin with the given name. Not-found results are not cached.
func (c *CachingCoinRepository) FindByName(ctx context.Context, name string) (*entity.Coin, error) {
	return readThrough(ctx, c, c.key("name", safe(name)), func() (*entity.Coin, error) {
		return c.inner.FindByName(ctx, name)
	})
}

// FindByID returns the coin with the given id.
func (c *CachingCoinRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Coin, error) {
	return readThrough(ctx, c, c.key("id", id), func() (*entity.Coin, error) {
		return c.inner.FindByID(ctx, id)
	})
}

// Count always reads through to the underlying repository.
func (c *CachingCoinRepository) Count(ctx context.Context) (int64, error) {
	return c.inner.Count(ctx)
}

// Save writes through and invalidates the namespace before the write and again
// after it succeeds. The second pass drops entries a concurrent read cached
// from the pre-commit state.
func (c *CachingCoinRepository) Save(ctx context.Context, coin *entity.Coin) error {
	c.invalidate(ctx)
	if err := c.inner.Save(ctx, coin); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// DeleteByID deletes through with the same two invalidation passes as Save.
func (c *CachingCoinRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	c.invalidate(ctx)
	if err := c.inner.DeleteByID(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// readThrough checks the cache first, then falls back to load and stores the result.
// Cache failures never fail the call.
func readThrough[T any](ctx context.Context, c *CachingCoinRepository, key string, load func() (T, error)) (T, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load()
	if err != nil {
		return out, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

func (c *CachingCoinRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.deleteByPattern(ctx, c.namespace+":*"); err != nil {
		slog.Warn("coin cache invalidation failed", "namespace", c.namespace, "error", err)
	}
}

// key builds <namespace>:<part>:<part>...
func (c *CachingCoinRepository) key(parts ...any) string {
	k := c.namespace
	for _, p := range parts {
		k += ":" + fmt.Sprint(p)
	}
	return k
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCoinRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes a user supplied key part so that distinct names never share a key
// and no ':' leaks into the key structure.
func safe(s string) string {
	return url.QueryEscape(s)
}
