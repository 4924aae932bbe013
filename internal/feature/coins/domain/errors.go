// Package domain defines domain-level errors for the coins feature.
package domain

import "errors"

// Domain errors for coin and price operations.
// Upper layers branch on them with errors.Is; store adapters wrap them with context.
var (
	// ErrCoinNotFound indicates that no coin matches the given id or name.
	ErrCoinNotFound = errors.New("coin not found")

	// ErrPriceNotFound indicates that a price id is not owned by the coin being saved.
	ErrPriceNotFound = errors.New("price not found")

	// ErrConstraintViolation indicates that a write was rejected because a
	// required field is missing or a uniqueness rule is broken.
	// Nothing is persisted when it is returned.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrDuplicateName is wrapped together with ErrConstraintViolation when another
	// coin already uses the name.
	ErrDuplicateName = errors.New("coin name already exists")

	// ErrInvalidArgument indicates malformed caller input, rejected before the store is reached.
	ErrInvalidArgument = errors.New("invalid argument")
)
