package adapters

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"coin_backend/internal/feature/coins/domain/entity"
)

// CoinModel is the GORM model for the coins table.
type CoinModel struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Name        string       `gorm:"size:255;not null;uniqueIndex"`
	Description string       `gorm:"size:1024;not null"`
	Created     time.Time    `gorm:"not null"`
	Updated     time.Time    `gorm:"not null"`
	StartDate   time.Time    `gorm:"not null;index"`
	Prices      []PriceModel `gorm:"foreignKey:CoinID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM.
func (CoinModel) TableName() string {
	return "coins"
}

// PriceModel is the GORM model for the prices table.
// Position keeps the order of the owning coin's price list.
type PriceModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	CoinID   uuid.UUID `gorm:"type:uuid;not null;index:idx_prices_coin_position,priority:1"`
	Position int       `gorm:"not null;index:idx_prices_coin_position,priority:2"`
	Value    Numeric   `gorm:"not null"`
	Date     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (PriceModel) TableName() string {
	return "prices"
}

// Numeric stores an exact decimal: NUMERIC on PostgreSQL, TEXT elsewhere so that
// SQLite never coerces the value to a float.
type Numeric struct {
	decimal.Decimal
}

// GormDBDataType picks the column type per dialect.
func (Numeric) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "numeric(38,18)"
	}
	return "text"
}

// Models lists every model of the coins feature for migrations.
func Models() []any {
	return []any{&CoinModel{}, &PriceModel{}}
}

func (m *CoinModel) toEntity() entity.Coin {
	prices := make([]entity.Price, 0, len(m.Prices))
	for _, p := range m.Prices {
		prices = append(prices, entity.Price{ID: p.ID, Value: p.Value.Decimal, Date: p.Date})
	}
	return entity.Coin{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Created:     m.Created,
		Updated:     m.Updated,
		StartDate:   m.StartDate,
		PriceList:   prices,
	}
}

func coinModelFromEntity(c *entity.Coin) *CoinModel {
	return &CoinModel{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Created:     c.Created,
		Updated:     c.Updated,
		StartDate:   c.StartDate,
	}
}

func priceModelFromEntity(coinID uuid.UUID, position int, p entity.Price) *PriceModel {
	return &PriceModel{
		ID:       p.ID,
		CoinID:   coinID,
		Position: position,
		Value:    Numeric{Decimal: p.Value},
		Date:     p.Date,
	}
}

func toEntities(rows []CoinModel) []entity.Coin {
	out := make([]entity.Coin, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out
}
