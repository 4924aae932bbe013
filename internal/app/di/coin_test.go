package di

import (
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"coin_backend/internal/platform/cache"
)

func TestNewCoinRepository(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	t.Run("without redis returns the store", func(t *testing.T) {
		repo := NewCoinRepository(db, nil, time.Minute)
		_, cached := repo.(*cache.CachingCoinRepository)
		assert.False(t, cached)
	})

	t.Run("with redis wraps the store", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()
		defer func() { _ = rdb.Close() }()

		repo := NewCoinRepository(db, rdb, time.Minute)
		_, cached := repo.(*cache.CachingCoinRepository)
		assert.True(t, cached)
	})
}
