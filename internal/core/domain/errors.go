package domain

import "errors"

var (
	// ErrStockNotFound means the durable record is absent where presence is
	// required (update, delete).
	ErrStockNotFound = errors.New("stock not found")

	// ErrInsufficientStock means a decrease would drive the durable quantity
	// negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrVersionConflict means another writer committed a newer version first.
	// Callers decide whether to retry; the service never does.
	ErrVersionConflict = errors.New("stock version conflict")

	// ErrInvalidQuantity means an increase or decrease was called with a
	// non-positive amount.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)
