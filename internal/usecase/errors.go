package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput covers missing required fields and non-positive quantities.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidProductID is returned when a product id is not a valid
	// storage identifier. Repos map their native parse failures to it.
	ErrInvalidProductID = errors.New("invalid product id")
	// ErrNotFound is returned when a referenced document is absent.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an idempotency key is already locked by
	// an in-flight request.
	ErrDuplicate = errors.New("duplicate idempotency key")
)

// InsufficientStockError reports a line whose requested quantity exceeds the
// product's available quantity at the observation point.
type InsufficientStockError struct {
	ProductID string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient quantity for product %s. Available: %d, Requested: %d",
		e.ProductID, e.Available, e.Requested)
}
