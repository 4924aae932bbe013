// Package adapters はcoinsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"coin_backend/internal/feature/coins/domain"
	"coin_backend/internal/feature/coins/domain/entity"
	"coin_backend/internal/feature/coins/usecase"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
const pgUniqueViolation = "23505"

// coinGorm はCoinRepositoryインターフェースのGORM実装です。
// PostgreSQLとSQLiteの両方で動作します。
type coinGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// coinGormがCoinRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.CoinRepository = (*coinGorm)(nil)

// NewCoinRepository は指定されたDB接続でcoinGormリポジトリの新しいインスタンスを生成します。
func NewCoinRepository(db *gorm.DB) *coinGorm {
	return &coinGorm{db: db, now: time.Now}
}

// WithClock は監査タイムスタンプに使う時刻関数を差し替えます。
func (r *coinGorm) WithClock(now func() time.Time) *coinGorm {
	r.now = now
	return r
}

// withPrices は価格リストを保存順でプリロードします。
func withPrices(db *gorm.DB) *gorm.DB {
	return db.Preload("Prices", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *coinGorm) find(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]entity.Coin, error) {
	var rows []CoinModel
	if err := r.db.WithContext(ctx).
		Scopes(withPrices, scope).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// FindAll は全コインを挿入順で返します。
func (r *coinGorm) FindAll(ctx context.Context) ([]entity.Coin, error) {
	return r.find(ctx, insertionOrder)
}

// FindAllOrderByNameDesc は名前の降順で全コインを返します。
func (r *coinGorm) FindAllOrderByNameDesc(ctx context.Context) ([]entity.Coin, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Order("name DESC")
	})
}

// FindAllOrderByStartDateDesc は開始日の降順に並べ、offset件目からlimit件を返します。
func (r *coinGorm) FindAllOrderByStartDateDesc(ctx context.Context, limit, offset int) ([]entity.Coin, error) {
	if limit == 0 {
		return []entity.Coin{}, nil
	}
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Order("start_date DESC").Order("id ASC").Limit(limit).Offset(offset)
	})
}

// FindAllOrderByDescriptionDescNameAsc は説明の降順、同値は名前の昇順で全コインを返します。
func (r *coinGorm) FindAllOrderByDescriptionDescNameAsc(ctx context.Context) ([]entity.Coin, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Order("description DESC").Order("name ASC")
	})
}

// FindPage は挿入順に並べ、offset件目からlimit件を返します。
func (r *coinGorm) FindPage(ctx context.Context, limit, offset int) ([]entity.Coin, error) {
	if limit == 0 {
		return []entity.Coin{}, nil
	}
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return insertionOrder(db).Limit(limit).Offset(offset)
	})
}

func insertionOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created ASC").Order("id ASC")
}

// FindByName は名前が一致するコインを返します。
// 存在しない場合はdomain.ErrCoinNotFoundを返します。
func (r *coinGorm) FindByName(ctx context.Context, name string) (*entity.Coin, error) {
	return r.first(ctx, "name = ?", name)
}

// FindByID はIDでコインを取得します。
func (r *coinGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.Coin, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *coinGorm) first(ctx context.Context, query string, arg any) (*entity.Coin, error) {
	var m CoinModel
	if err := r.db.WithContext(ctx).
		Scopes(withPrices).
		Where(query, arg).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCoinNotFound
		}
		return nil, err
	}
	c := m.toEntity()
	return &c, nil
}

// Count はコインの件数を返します。
func (r *coinGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&CoinModel{}).Count(&n).Error
	return n, err
}

// Save はコインを保存します。IDが空ならinsert、あればupdateです。
// 価格リストは同じトランザクション内で渡された内容に同期されます。
// 失敗した場合は何も書き込まれず、引数のcoinも変更されません。
func (r *coinGorm) Save(ctx context.Context, coin *entity.Coin) error {
	if err := coin.Validate(); err != nil {
		return err
	}

	saved := *coin
	saved.PriceList = append([]entity.Price(nil), coin.PriceList...)
	// SQLiteは時刻を文字列として比較するため、オフセットと精度を揃えてから保存する
	saved.StartDate = normalizeTime(saved.StartDate)
	for i := range saved.PriceList {
		saved.PriceList[i].Date = normalizeTime(saved.PriceList[i].Date)
	}
	now := normalizeTime(r.now())

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if saved.IsNew() {
			return insertCoin(tx, &saved, now)
		}
		return updateCoin(tx, &saved, now)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %w: %q", domain.ErrConstraintViolation, domain.ErrDuplicateName, coin.Name)
		}
		return err
	}

	*coin = saved
	return nil
}

// normalizeTime はUTCかつマイクロ秒精度（PostgreSQLの精度）に揃えます。
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func insertCoin(tx *gorm.DB, c *entity.Coin, now time.Time) error {
	c.ID = uuid.New()
	c.Created = now
	c.Updated = now
	if err := tx.Create(coinModelFromEntity(c)).Error; err != nil {
		return err
	}

	prices := make([]*PriceModel, 0, len(c.PriceList))
	for i := range c.PriceList {
		if c.PriceList[i].ID != uuid.Nil {
			return fmt.Errorf("%w: price %s", domain.ErrPriceNotFound, c.PriceList[i].ID)
		}
		c.PriceList[i].ID = uuid.New()
		prices = append(prices, priceModelFromEntity(c.ID, i, c.PriceList[i]))
	}
	if len(prices) == 0 {
		return nil
	}
	return tx.Create(prices).Error
}

func updateCoin(tx *gorm.DB, c *entity.Coin, now time.Time) error {
	var existing CoinModel
	if err := tx.Select("id", "created").Where("id = ?", c.ID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrCoinNotFound
		}
		return err
	}

	c.Created = existing.Created
	c.Updated = now
	if c.Updated.Before(c.Created) {
		c.Updated = c.Created
	}
	if err := tx.Model(&CoinModel{}).Where("id = ?", c.ID).Updates(map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"updated":     c.Updated,
		"start_date":  c.StartDate,
	}).Error; err != nil {
		return err
	}
	return syncPrices(tx, c)
}

// syncPrices は永続化済みの価格と渡された価格の差分を計算し、
// insert/update/deleteを適用します。
func syncPrices(tx *gorm.DB, c *entity.Coin) error {
	var ids []uuid.UUID
	if err := tx.Model(&PriceModel{}).Where("coin_id = ?", c.ID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	stale := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		stale[id] = struct{}{}
	}

	var inserts []*PriceModel
	seen := make(map[uuid.UUID]struct{}, len(c.PriceList))
	for i := range c.PriceList {
		p := &c.PriceList[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
			inserts = append(inserts, priceModelFromEntity(c.ID, i, *p))
			continue
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: price %s listed twice", domain.ErrConstraintViolation, p.ID)
		}
		seen[p.ID] = struct{}{}
		if _, owned := stale[p.ID]; !owned {
			return fmt.Errorf("%w: price %s", domain.ErrPriceNotFound, p.ID)
		}
		delete(stale, p.ID)
		if err := tx.Model(&PriceModel{}).Where("id = ?", p.ID).Updates(map[string]any{
			"position": i,
			"value":    Numeric{Decimal: p.Value},
			"date":     p.Date,
		}).Error; err != nil {
			return err
		}
	}

	if len(stale) > 0 {
		removed := make([]uuid.UUID, 0, len(stale))
		for id := range stale {
			removed = append(removed, id)
		}
		if err := tx.Where("coin_id = ? AND id IN ?", c.ID, removed).Delete(&PriceModel{}).Error; err != nil {
			return err
		}
	}
	if len(inserts) == 0 {
		return nil
	}
	return tx.Create(inserts).Error
}

// DeleteByID はコインと所有する価格を同一トランザクションで削除します。
// 存在しない場合はdomain.ErrCoinNotFoundを返します。
func (r *coinGorm) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("coin_id = ?", id).Delete(&PriceModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&CoinModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrCoinNotFound
		}
		return nil
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
