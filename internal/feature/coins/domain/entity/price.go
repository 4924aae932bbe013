package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coin_backend/internal/feature/coins/domain"
)

// Price is one sampled observation owned by a Coin.
// It has no lifecycle of its own and is only persisted through its owner.
type Price struct {
	ID    uuid.UUID       // generated by the store on first save
	Value decimal.Decimal // exact amount, never negative
	Date  time.Time       // observation time
}

// NewPrice builds a Price after checking its invariants.
func NewPrice(value decimal.Decimal, date time.Time) (Price, error) {
	p := Price{Value: value, Date: date}
	if err := p.Validate(); err != nil {
		return Price{}, err
	}
	return p, nil
}

// ParsePrice coerces a textual amount to an exact decimal and builds a Price.
func ParsePrice(value string, date time.Time) (Price, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Price{}, fmt.Errorf("%w: price value %q: %v", domain.ErrInvalidArgument, value, err)
	}
	return NewPrice(d, date)
}

// Validate reports a constraint violation for a missing date or a negative value.
func (p Price) Validate() error {
	if p.Date.IsZero() {
		return fmt.Errorf("%w: price date is required", domain.ErrConstraintViolation)
	}
	if p.Value.IsNegative() {
		return fmt.Errorf("%w: price value %s is negative", domain.ErrConstraintViolation, p.Value)
	}
	return nil
}
