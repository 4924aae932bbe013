package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin_backend/internal/feature/coins/domain"
	"coin_backend/internal/feature/coins/domain/entity"
	"coin_backend/internal/feature/coins/usecase"
)

// mockCoinRepository はCoinRepositoryインターフェースのモック実装です。
type mockCoinRepository struct {
	FindAllFunc                              func(ctx context.Context) ([]entity.Coin, error)
	FindAllOrderByNameDescFunc               func(ctx context.Context) ([]entity.Coin, error)
	FindAllOrderByStartDateDescFunc          func(ctx context.Context, limit, offset int) ([]entity.Coin, error)
	FindAllOrderByDescriptionDescNameAscFunc func(ctx context.Context) ([]entity.Coin, error)
	FindPageFunc                             func(ctx context.Context, limit, offset int) ([]entity.Coin, error)
	FindByNameFunc                           func(ctx context.Context, name string) (*entity.Coin, error)
	FindByIDFunc                             func(ctx context.Context, id uuid.UUID) (*entity.Coin, error)
	SaveFunc                                 func(ctx context.Context, coin *entity.Coin) error
	DeleteByIDFunc                           func(ctx context.Context, id uuid.UUID) error
	CountFunc                                func(ctx context.Context) (int64, error)
}

func (m *mockCoinRepository) FindAll(ctx context.Context) ([]entity.Coin, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockCoinRepository) FindAllOrderByNameDesc(ctx context.Context) ([]entity.Coin, error) {
	if m.FindAllOrderByNameDescFunc != nil {
		return m.FindAllOrderByNameDescFunc(ctx)
	}
	return nil, nil
}

func (m *mockCoinRepository) FindAllOrderByStartDateDesc(ctx context.Context, limit, offset int) ([]entity.Coin, error) {
	if m.FindAllOrderByStartDateDescFunc != nil {
		return m.FindAllOrderByStartDateDescFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockCoinRepository) FindAllOrderByDescriptionDescNameAsc(ctx context.Context) ([]entity.Coin, error) {
	if m.FindAllOrderByDescriptionDescNameAscFunc != nil {
		return m.FindAllOrderByDescriptionDescNameAscFunc(ctx)
	}
	return nil, nil
}

func (m *mockCoinRepository) FindPage(ctx context.Context, limit, offset int) ([]entity.Coin, error) {
	if m.FindPageFunc != nil {
		return m.FindPageFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockCoinRepository) FindByName(ctx context.Context, name string) (*entity.Coin, error) {
	if m.FindByNameFunc != nil {
		return m.FindByNameFunc(ctx, name)
	}
	return nil, domain.ErrCoinNotFound
}

func (m *mockCoinRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Coin, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrCoinNotFound
}

func (m *mockCoinRepository) Save(ctx context.Context, coin *entity.Coin) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, coin)
	}
	return nil
}

func (m *mockCoinRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if m.DeleteByIDFunc != nil {
		return m.DeleteByIDFunc(ctx, id)
	}
	return nil
}

func (m *mockCoinRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func sampleCoins(names ...string) []entity.Coin {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]entity.Coin, 0, len(names))
	for _, n := range names {
		out = append(out, entity.Coin{ID: uuid.New(), Name: n, StartDate: start})
	}
	return out
}

func TestNewCoinUsecase(t *testing.T) {
	t.Parallel()

	uc := usecase.NewCoinUsecase(&mockCoinRepository{})
	assert.NotNil(t, uc, "usecase should not be nil")
}

// TestCoinUsecase_Listings は一覧系メソッドがリポジトリの結果をそのまま返すことを検証します。
func TestCoinUsecase_Listings(t *testing.T) {
	t.Parallel()

	coins := sampleCoins("a", "b")
	repoErr := errors.New("database connection failed")

	tests := []struct {
		name string
		call func(uc *usecase.CoinUsecase) ([]entity.Coin, error)
	}{
		{name: "ListCoins", call: func(uc *usecase.CoinUsecase) ([]entity.Coin, error) {
			return uc.ListCoins(context.Background())
		}},
		{name: "ListCoinsByNameDesc", call: func(uc *usecase.CoinUsecase) ([]entity.Coin, error) {
			return uc.ListCoinsByNameDesc(context.Background())
		}},
		{name: "ListCoinsByDescriptionDescNameAsc", call: func(uc *usecase.CoinUsecase) ([]entity.Coin, error) {
			return uc.ListCoinsByDescriptionDescNameAsc(context.Background())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/success", func(t *testing.T) {
			t.Parallel()

			list := func(ctx context.Context) ([]entity.Coin, error) { return coins, nil }
			uc := usecase.NewCoinUsecase(&mockCoinRepository{
				FindAllFunc:                              list,
				FindAllOrderByNameDescFunc:               list,
				FindAllOrderByDescriptionDescNameAscFunc: list,
			})

			got, err := tt.call(uc)
			require.NoError(t, err)
			assert.Equal(t, coins, got)
		})
		t.Run(tt.name+"/failure", func(t *testing.T) {
			t.Parallel()

			fail := func(ctx context.Context) ([]entity.Coin, error) { return nil, repoErr }
			uc := usecase.NewCoinUsecase(&mockCoinRepository{
				FindAllFunc:                              fail,
				FindAllOrderByNameDescFunc:               fail,
				FindAllOrderByDescriptionDescNameAscFunc: fail,
			})

			got, err := tt.call(uc)
			assert.ErrorIs(t, err, repoErr)
			assert.Nil(t, got)
		})
	}
}

func TestCoinUsecase_GetCoinByName(t *testing.T) {
	t.Parallel()

	coin := sampleCoins("btc")[0]

	tests := []struct {
		name     string
		input    string
		findFunc func(ctx context.Context, name string) (*entity.Coin, error)
		want     *entity.Coin
		wantErr  error
	}{
		{
			name:  "success: coin found",
			input: "btc",
			findFunc: func(ctx context.Context, name string) (*entity.Coin, error) {
				assert.Equal(t, "btc", name)
				return &coin, nil
			},
			want: &coin,
		},
		{
			name:  "failure: not found is propagated",
			input: "doge",
			findFunc: func(ctx context.Context, name string) (*entity.Coin, error) {
				return nil, domain.ErrCoinNotFound
			},
			wantErr: domain.ErrCoinNotFound,
		},
		{
			name:    "failure: empty name is rejected before the store",
			input:   " ",
			wantErr: domain.ErrInvalidArgument,
			findFunc: func(ctx context.Context, name string) (*entity.Coin, error) {
				t.Error("repository must not be called")
				return nil, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := usecase.NewCoinUsecase(&mockCoinRepository{FindByNameFunc: tt.findFunc})
			got, err := uc.GetCoinByName(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestCoinUsecase_Paging はページ指定の検証とリポジトリへの引き渡しを検証します。
func TestCoinUsecase_Paging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		count      int
		offset     int
		wantErr    bool
		wantLimit  int
		wantOffset int
	}{
		{name: "success: first page", count: 3, offset: 0, wantLimit: 3, wantOffset: 0},
		{name: "success: zero count", count: 0, offset: 0, wantLimit: 0, wantOffset: 0},
		{name: "success: later page", count: 5, offset: 20, wantLimit: 5, wantOffset: 20},
		{name: "failure: negative count", count: -1, wantErr: true},
		{name: "failure: negative offset", count: 1, offset: -1, wantErr: true},
		{name: "failure: count above max", count: usecase.MaxPageSize + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			repo := &mockCoinRepository{
				FindAllOrderByStartDateDescFunc: func(ctx context.Context, limit, offset int) ([]entity.Coin, error) {
					called = true
					assert.Equal(t, tt.wantLimit, limit)
					assert.Equal(t, tt.wantOffset, offset)
					return []entity.Coin{}, nil
				},
			}
			uc := usecase.NewCoinUsecase(repo)

			got, err := uc.ListLatestCoins(context.Background(), tt.count, tt.offset)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidArgument)
				assert.False(t, called, "repository must not be called")
				return
			}
			require.NoError(t, err)
			assert.True(t, called)
			assert.Empty(t, got)
		})
	}
}

func TestCoinUsecase_ListFirstCoins(t *testing.T) {
	t.Parallel()

	coins := sampleCoins("a", "b", "c")
	uc := usecase.NewCoinUsecase(&mockCoinRepository{
		FindPageFunc: func(ctx context.Context, limit, offset int) ([]entity.Coin, error) {
			assert.Equal(t, 0, offset)
			return coins[:limit], nil
		},
	})

	got, err := uc.ListFirstCoins(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, coins[:2], got)

	_, err = uc.ListFirstCoins(context.Background(), -5)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCoinUsecase_DeleteCoin(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		var got uuid.UUID
		uc := usecase.NewCoinUsecase(&mockCoinRepository{
			DeleteByIDFunc: func(ctx context.Context, id uuid.UUID) error {
				got = id
				return nil
			},
		})
		require.NoError(t, uc.DeleteCoin(context.Background(), id))
		assert.Equal(t, id, got)
	})

	t.Run("not found is propagated", func(t *testing.T) {
		t.Parallel()
		uc := usecase.NewCoinUsecase(&mockCoinRepository{
			DeleteByIDFunc: func(ctx context.Context, id uuid.UUID) error { return domain.ErrCoinNotFound },
		})
		assert.ErrorIs(t, uc.DeleteCoin(context.Background(), id), domain.ErrCoinNotFound)
	})

	t.Run("nil id is rejected", func(t *testing.T) {
		t.Parallel()
		uc := usecase.NewCoinUsecase(&mockCoinRepository{})
		assert.ErrorIs(t, uc.DeleteCoin(context.Background(), uuid.Nil), domain.ErrInvalidArgument)
	})
}

func TestCoinUsecase_CreateAndUpdate(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("create assigns id through the store", func(t *testing.T) {
		t.Parallel()
		uc := usecase.NewCoinUsecase(&mockCoinRepository{
			SaveFunc: func(ctx context.Context, coin *entity.Coin) error {
				coin.ID = uuid.New()
				return nil
			},
		})
		got, err := uc.CreateCoin(context.Background(), entity.NewCoin("btc", "", start))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, got.ID)
	})

	t.Run("create rejects an existing id", func(t *testing.T) {
		t.Parallel()
		uc := usecase.NewCoinUsecase(&mockCoinRepository{})
		c := entity.NewCoin("btc", "", start)
		c.ID = uuid.New()
		_, err := uc.CreateCoin(context.Background(), c)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("create propagates constraint violation", func(t *testing.T) {
		t.Parallel()
		uc := usecase.NewCoinUsecase(&mockCoinRepository{
			SaveFunc: func(ctx context.Context, coin *entity.Coin) error { return domain.ErrConstraintViolation },
		})
		_, err := uc.CreateCoin(context.Background(), entity.NewCoin("btc", "", start))
		assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	})

	t.Run("update sets the path id", func(t *testing.T) {
		t.Parallel()
		id := uuid.New()
		uc := usecase.NewCoinUsecase(&mockCoinRepository{
			SaveFunc: func(ctx context.Context, coin *entity.Coin) error {
				assert.Equal(t, id, coin.ID)
				return nil
			},
		})
		got, err := uc.UpdateCoin(context.Background(), id, entity.NewCoin("btc", "", start))
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	})

	t.Run("update rejects nil id", func(t *testing.T) {
		t.Parallel()
		uc := usecase.NewCoinUsecase(&mockCoinRepository{})
		_, err := uc.UpdateCoin(context.Background(), uuid.Nil, entity.NewCoin("btc", "", start))
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

// TestCoinUsecase_ContextCancellation はコンテキストのキャンセルが伝播されることを検証します。
func TestCoinUsecase_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := usecase.NewCoinUsecase(&mockCoinRepository{
		FindAllFunc: func(ctx context.Context) ([]entity.Coin, error) { return nil, ctx.Err() },
	})

	coins, err := uc.ListCoins(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, coins)
}
