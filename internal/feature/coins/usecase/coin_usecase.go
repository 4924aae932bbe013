// Package usecase はコイン機能のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"coin_backend/internal/feature/coins/domain"
	"coin_backend/internal/feature/coins/domain/entity"
)

// MaxPageSize は1回のリクエストで返却できるコインの最大件数です。
const MaxPageSize = 1000

// CoinRepository はコイン集約の永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CoinRepository interface {
	FindAll(ctx context.Context) ([]entity.Coin, error)
	FindAllOrderByNameDesc(ctx context.Context) ([]entity.Coin, error)
	FindAllOrderByStartDateDesc(ctx context.Context, limit, offset int) ([]entity.Coin, error)
	FindAllOrderByDescriptionDescNameAsc(ctx context.Context) ([]entity.Coin, error)
	FindPage(ctx context.Context, limit, offset int) ([]entity.Coin, error)
	FindByName(ctx context.Context, name string) (*entity.Coin, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Coin, error)
	// Save はIDの有無でinsert/updateを切り替え、価格リストも同一トランザクションで同期します。
	Save(ctx context.Context, coin *entity.Coin) error
	// DeleteByID はコインと所有する価格をまとめて削除します。
	DeleteByID(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// CoinUsecase はコインの参照・削除・保存操作を提供します。
// 各メソッドは入力検証のみを行い、そのままリポジトリへ委譲します。
type CoinUsecase struct {
	repo CoinRepository
}

// NewCoinUsecase は指定されたリポジトリでCoinUsecaseを生成します。
func NewCoinUsecase(repo CoinRepository) *CoinUsecase {
	return &CoinUsecase{repo: repo}
}

// ListCoins は全コインを挿入順で返します。
func (u *CoinUsecase) ListCoins(ctx context.Context) ([]entity.Coin, error) {
	return u.repo.FindAll(ctx)
}

// ListCoinsByNameDesc は名前の降順でコインを返します。
func (u *CoinUsecase) ListCoinsByNameDesc(ctx context.Context) ([]entity.Coin, error) {
	return u.repo.FindAllOrderByNameDesc(ctx)
}

// ListCoinsByDescriptionDescNameAsc は説明の降順、同値の場合は名前の昇順でコインを返します。
func (u *CoinUsecase) ListCoinsByDescriptionDescNameAsc(ctx context.Context) ([]entity.Coin, error) {
	return u.repo.FindAllOrderByDescriptionDescNameAsc(ctx)
}

// GetCoinByName は名前が完全一致するコインを返します。
func (u *CoinUsecase) GetCoinByName(ctx context.Context, name string) (*entity.Coin, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	}
	return u.repo.FindByName(ctx, name)
}

// ListFirstCoins は挿入順で先頭からcount件のコインを返します。
func (u *CoinUsecase) ListFirstCoins(ctx context.Context, count int) ([]entity.Coin, error) {
	if err := validatePage(count, 0); err != nil {
		return nil, err
	}
	return u.repo.FindPage(ctx, count, 0)
}

// ListLatestCoins は開始日の新しい順にoffset件目からcount件のコインを返します。
// 範囲外のページは空のスライスになります。
func (u *CoinUsecase) ListLatestCoins(ctx context.Context, count, offset int) ([]entity.Coin, error) {
	if err := validatePage(count, offset); err != nil {
		return nil, err
	}
	return u.repo.FindAllOrderByStartDateDesc(ctx, count, offset)
}

// CreateCoin は新しいコインを価格履歴ごと保存します。
func (u *CoinUsecase) CreateCoin(ctx context.Context, coin *entity.Coin) (*entity.Coin, error) {
	if coin == nil {
		return nil, fmt.Errorf("%w: coin is required", domain.ErrInvalidArgument)
	}
	if !coin.IsNew() {
		return nil, fmt.Errorf("%w: new coin must not carry an id", domain.ErrInvalidArgument)
	}
	if err := u.repo.Save(ctx, coin); err != nil {
		return nil, err
	}
	return coin, nil
}

// UpdateCoin は既存のコインを置き換えます。価格リストは渡された内容に同期されます。
func (u *CoinUsecase) UpdateCoin(ctx context.Context, id uuid.UUID, coin *entity.Coin) (*entity.Coin, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidArgument)
	}
	if coin == nil {
		return nil, fmt.Errorf("%w: coin is required", domain.ErrInvalidArgument)
	}
	coin.ID = id
	if err := u.repo.Save(ctx, coin); err != nil {
		return nil, err
	}
	return coin, nil
}

// DeleteCoin はIDで指定されたコインを削除します。
func (u *CoinUsecase) DeleteCoin(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidArgument)
	}
	return u.repo.DeleteByID(ctx, id)
}

func validatePage(count, offset int) error {
	if count < 0 {
		return fmt.Errorf("%w: count must not be negative", domain.ErrInvalidArgument)
	}
	if count > MaxPageSize {
		return fmt.Errorf("%w: count must not exceed %d", domain.ErrInvalidArgument, MaxPageSize)
	}
	if offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidArgument)
	}
	return nil
}
