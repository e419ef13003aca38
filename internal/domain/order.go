package domain

import (
	"math"
	"time"
)

// OrderLine is one (product, quantity) entry within an order. Price is the
// product's unit price captured at validation time, so later catalog price
// changes never alter a historical order total.
type OrderLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is immutable once persisted. TotalAmount is the sum of
// quantity*price over Items, rounded to 2 decimal places.
type Order struct {
	ID          string      `json:"_id"`
	UserID      string      `json:"user_id"`
	Items       []OrderLine `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	CreatedAt   time.Time   `json:"created_at"`
}

// RoundAmount rounds a monetary amount to 2 decimal places.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}
