// Package entity defines the domain models for the coins feature.
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"coin_backend/internal/feature/coins/domain"
)

// Coin is the aggregate root of the coins feature.
// It owns an ordered price history; the slice order is the persisted order.
type Coin struct {
	ID          uuid.UUID // uuid.Nil until the first save
	Name        string    // unique across all coins
	Description string
	Created     time.Time // set once on insert
	Updated     time.Time // refreshed on every save
	StartDate   time.Time
	PriceList   []Price
}

// NewCoin returns an unsaved coin with an empty price history.
func NewCoin(name, description string, startDate time.Time) *Coin {
	return &Coin{
		Name:        name,
		Description: description,
		StartDate:   startDate,
		PriceList:   []Price{},
	}
}

// IsNew reports whether the coin has never been persisted.
func (c *Coin) IsNew() bool {
	return c.ID == uuid.Nil
}

// AddPrice appends a price sample to the end of the history.
func (c *Coin) AddPrice(p Price) {
	c.PriceList = append(c.PriceList, p)
}

// RemovePrice drops the price with the given id, keeping the order of the rest.
// It returns false when the coin holds no such price.
func (c *Coin) RemovePrice(id uuid.UUID) bool {
	for i, p := range c.PriceList {
		if p.ID == id {
			c.PriceList = append(c.PriceList[:i], c.PriceList[i+1:]...)
			return true
		}
	}
	return false
}

// Validate checks the required fields of the coin and every owned price.
func (c *Coin) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: coin name is required", domain.ErrConstraintViolation)
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("%w: coin start date is required", domain.ErrConstraintViolation)
	}
	for i, p := range c.PriceList {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("price_list[%d]: %w", i, err)
		}
	}
	return nil
}
