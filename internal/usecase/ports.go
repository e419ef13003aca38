package usecase

import (
	"context"

	"github.com/ecomkit/shop-api/internal/domain"
)

// Page is a normalized pagination request. Limit is clamped to [1,100]
// (default 10), Offset to >= 0.
type Page struct {
	Limit  int64
	Offset int64
}

// Normalize applies the defaults and bounds of the pagination contract.
func (p Page) Normalize() Page {
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PageInfo describes the page actually returned.
type PageInfo struct {
	Limit   int64 `json:"limit"`
	Offset  int64 `json:"offset"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
}

// NewPageInfo derives the page descriptor for a normalized page over total matches.
func NewPageInfo(p Page, total int64) PageInfo {
	return PageInfo{
		Limit:   p.Limit,
		Offset:  p.Offset,
		Total:   total,
		HasNext: p.Offset+p.Limit < total,
	}
}

// ProductFilter narrows a catalog listing. Name matches as a case-insensitive
// substring, Size matches exactly; empty fields are ignored.
type ProductFilter struct {
	Name string
	Size string
}

type ProductRepo interface {
	// Insert persists a new product and returns the store-assigned id.
	Insert(ctx context.Context, p domain.Product) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// List returns one page of products sorted by id ascending, plus the
	// total count of documents matching the filter.
	List(ctx context.Context, f ProductFilter, page Page) ([]domain.Product, int64, error)
	// DecrementStock atomically decrements available_quantity by qty iff the
	// current value is at least qty. It returns false, with no mutation, when
	// the precondition does not hold.
	DecrementStock(ctx context.Context, id string, qty int64) (bool, error)
	// IncrementStock releases a previously applied decrement.
	IncrementStock(ctx context.Context, id string, qty int64) error
}

type OrderRepo interface {
	// Insert persists a new order and returns the store-assigned id.
	Insert(ctx context.Context, o domain.Order) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, page Page) ([]domain.Order, int64, error)
}

// IdempotencyStore guards order placement against duplicate submissions of
// the same key within a scope (here: the user id).
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// OrderEvents publishes domain events after a successful commit.
type OrderEvents interface {
	PublishCreated(ctx context.Context, msg OrderCreatedMsg) error
}

// OrderCreatedMsg is the payload of the order.created event.
type OrderCreatedMsg struct {
	OrderID     string  `json:"order_id"`
	UserID      string  `json:"user_id"`
	TotalAmount float64 `json:"total_amount"`
	CreatedAt   string  `json:"created_at"`
}
