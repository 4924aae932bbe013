package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coin_backend/internal/feature/coins/domain/entity"
)

// PriceReq は価格1件の入力です。
// idを省略すると新規の価格として扱われます。valueは数値・文字列のどちらも受け付けます。
type PriceReq struct {
	ID    uuid.UUID       `json:"id"`
	Value decimal.Decimal `json:"value"`
	Date  time.Time       `json:"date"`
}

// CoinReq はPOST /coins と PUT /coins/:id のリクエストボディです。
// 開始日や価格の検証はドメイン層で行います。
type CoinReq struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date"`
	PriceList   []PriceReq `json:"price_list"`
}

// ToEntity はリクエストを未保存のエンティティに変換します。
func (r CoinReq) ToEntity() *entity.Coin {
	c := entity.NewCoin(r.Name, r.Description, r.StartDate)
	for _, p := range r.PriceList {
		c.AddPrice(entity.Price{ID: p.ID, Value: p.Value, Date: p.Date})
	}
	return c
}
