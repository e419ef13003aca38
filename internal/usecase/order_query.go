package usecase

import (
	"context"

	"github.com/ecomkit/shop-api/internal/domain"
)

// OrderQuery lists a user's orders, oldest first (id ascending).
type OrderQuery struct {
	orders OrderRepo
}

func NewOrderQuery(orders OrderRepo) *OrderQuery {
	return &OrderQuery{orders: orders}
}

func (uc *OrderQuery) ListByUser(ctx context.Context, userID string, page Page) ([]domain.Order, PageInfo, error) {
	if userID == "" {
		return nil, PageInfo{}, ErrInvalidInput
	}
	page = page.Normalize()
	items, total, err := uc.orders.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return items, NewPageInfo(page, total), nil
}
