package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"coin_backend/internal/feature/coins/domain"
	"coin_backend/internal/feature/coins/domain/entity"
)

const (
	// DefaultSeedCoins は起動時に投入するコインの件数です。
	DefaultSeedCoins = 10
	// DefaultSeedPrices はコイン1件あたりの価格サンプル数です。
	DefaultSeedPrices = 10
	// DefaultSeedMaxValue は価格サンプルの上限値です。
	DefaultSeedMaxValue = 100

	seedDescription = "Description"
	seedPlaces      = 8
)

// CoinWriter is the subset of the store the seed loader needs.
type CoinWriter interface {
	Save(ctx context.Context, coin *entity.Coin) error
	Count(ctx context.Context) (int64, error)
	FindByName(ctx context.Context, name string) (*entity.Coin, error)
}

// SeedConfig controls the size of a seed batch.
type SeedConfig struct {
	Coins    int
	Prices   int
	MaxValue int
}

// SeedUsecase populates the store with synthetic coins and price histories.
// Every call appends a new batch; it never updates existing coins.
type SeedUsecase struct {
	repo CoinWriter
	cfg  SeedConfig
	now  func() time.Time
	rnd  *rand.Rand
}

// NewSeedUsecase creates a SeedUsecase. Zero values in cfg fall back to the defaults.
func NewSeedUsecase(repo CoinWriter, cfg SeedConfig) *SeedUsecase {
	if cfg.Coins <= 0 {
		cfg.Coins = DefaultSeedCoins
	}
	if cfg.Prices <= 0 {
		cfg.Prices = DefaultSeedPrices
	}
	if cfg.MaxValue <= 0 {
		cfg.MaxValue = DefaultSeedMaxValue
	}
	return &SeedUsecase{
		repo: repo,
		cfg:  cfg,
		now:  func() time.Time { return time.Now().UTC() },
		rnd:  rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
}

// WithClock replaces the time source.
func (s *SeedUsecase) WithClock(now func() time.Time) *SeedUsecase {
	s.now = now
	return s
}

// WithRand replaces the random source.
func (s *SeedUsecase) WithRand(rnd *rand.Rand) *SeedUsecase {
	s.rnd = rnd
	return s
}

// Seed inserts one batch sequentially and returns once every coin is committed.
// Numbering continues from the current coin count and skips names that are
// already taken.
func (s *SeedUsecase) Seed(ctx context.Context) (int, error) {
	existing, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count coins: %w", err)
	}

	now := s.now()
	maxValue := decimal.NewFromInt(int64(s.cfg.MaxValue))
	next := existing
	for i := 1; i <= s.cfg.Coins; i++ {
		name, err := s.nextFreeName(ctx, &next)
		if err != nil {
			return i - 1, err
		}
		c := entity.NewCoin(name, seedDescription, now.AddDate(0, 0, -i))
		for d := 1; d <= s.cfg.Prices; d++ {
			v := decimal.NewFromFloat(s.rnd.Float64()).Mul(maxValue).Round(seedPlaces)
			p, err := entity.NewPrice(v, now.AddDate(0, 0, -d))
			if err != nil {
				return i - 1, err
			}
			c.AddPrice(p)
		}
		if err := s.repo.Save(ctx, c); err != nil {
			return i - 1, fmt.Errorf("seed %q: %w", c.Name, err)
		}
	}

	slog.Info("seed completed", "coins", s.cfg.Coins, "prices_per_coin", s.cfg.Prices, "existing", existing)
	return s.cfg.Coins, nil
}

// nextFreeName advances *next until "coin <n>" is not used by any stored coin.
func (s *SeedUsecase) nextFreeName(ctx context.Context, next *int64) (string, error) {
	for {
		*next++
		name := fmt.Sprintf("coin %d", *next)
		_, err := s.repo.FindByName(ctx, name)
		if errors.Is(err, domain.ErrCoinNotFound) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("check seed name %q: %w", name, err)
		}
	}
}
