// Package dto はcoinsフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"coin_backend/internal/feature/coins/domain/entity"
)

// PriceResponse は価格1件のレスポンスDTOです。
// valueは精度を落とさないよう10進文字列で返します。
type PriceResponse struct {
	ID    string          `json:"id"`
	Value decimal.Decimal `json:"value"`
	Date  string          `json:"date"`
}

// CoinResponse はコイン1件と価格履歴のレスポンスDTOです。
type CoinResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Created     string          `json:"created"`
	Updated     string          `json:"updated"`
	StartDate   string          `json:"start_date"`
	PriceList   []PriceResponse `json:"price_list"`
}

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewCoinResponse はエンティティをレスポンスDTOに変換します。
func NewCoinResponse(c entity.Coin) CoinResponse {
	prices := make([]PriceResponse, 0, len(c.PriceList))
	for _, p := range c.PriceList {
		prices = append(prices, PriceResponse{
			ID:    p.ID.String(),
			Value: p.Value,
			Date:  formatTime(p.Date),
		})
	}
	return CoinResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		Created:     formatTime(c.Created),
		Updated:     formatTime(c.Updated),
		StartDate:   formatTime(c.StartDate),
		PriceList:   prices,
	}
}

// NewCoinListResponse はエンティティのスライスを変換します。空でも`[]`を返します。
func NewCoinListResponse(coins []entity.Coin) []CoinResponse {
	out := make([]CoinResponse, 0, len(coins))
	for _, c := range coins {
		out = append(out, NewCoinResponse(c))
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
