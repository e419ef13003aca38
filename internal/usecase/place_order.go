package usecase

import (
	"context"
	"time"

	"github.com/ecomkit/shop-api/internal/domain"
	"github.com/ecomkit/shop-api/internal/logging"
)

type PlaceOrderInput struct {
	UserID         string
	IdempotencyKey string
	Items          []OrderItemInput
}

type OrderItemInput struct {
	ProductID string
	Quantity  int64
}

// PlaceOrder validates a multi-line order against the catalog and commits it.
//
// Each line is reserved with a single conditional decrement, so two competing
// orders can never both pass a stale availability check. If any later line
// fails, reservations taken so far are released and no order document is
// written: the store either holds a complete order with all its decrements,
// or neither.
type PlaceOrder struct {
	products ProductRepo
	orders   OrderRepo
	idem     IdempotencyStore // optional
	events   OrderEvents      // optional
}

func NewPlaceOrder(products ProductRepo, orders OrderRepo, idem IdempotencyStore, events OrderEvents) *PlaceOrder {
	return &PlaceOrder{products: products, orders: orders, idem: idem, events: events}
}

func (uc *PlaceOrder) Execute(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if in.UserID == "" || len(in.Items) == 0 {
		return nil, ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, ErrInvalidInput
		}
	}

	if uc.idem != nil && in.IdempotencyKey != "" {
		// Fast path: the same key already produced an order.
		id, ok, err := uc.idem.Recall(ctx, in.UserID, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if ok {
			return uc.orders.GetByID(ctx, id)
		}
		ok, err = uc.idem.TryLock(ctx, in.UserID, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDuplicate
		}
	}

	var (
		total    float64
		lines    []domain.OrderLine
		reserved []OrderItemInput
	)
	for _, it := range in.Items {
		p, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			uc.release(ctx, reserved)
			return nil, err
		}

		ok, err := uc.products.DecrementStock(ctx, p.ID, it.Quantity)
		if err != nil {
			uc.release(ctx, reserved)
			return nil, err
		}
		if !ok {
			uc.release(ctx, reserved)
			return nil, &InsufficientStockError{
				ProductID: p.ID,
				Available: p.AvailableQuantity,
				Requested: it.Quantity,
			}
		}
		reserved = append(reserved, it)

		total += p.Price * float64(it.Quantity)
		lines = append(lines, domain.OrderLine{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			Price:     p.Price,
		})
	}

	id, err := uc.orders.Insert(ctx, domain.Order{
		UserID:      in.UserID,
		Items:       lines,
		TotalAmount: domain.RoundAmount(total),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		uc.release(ctx, reserved)
		return nil, err
	}

	created, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.idem != nil && in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, in.UserID, in.IdempotencyKey, created.ID)
	}
	if uc.events != nil {
		msg := OrderCreatedMsg{
			OrderID:     created.ID,
			UserID:      created.UserID,
			TotalAmount: created.TotalAmount,
			CreatedAt:   created.CreatedAt.Format(time.RFC3339Nano),
		}
		if err := uc.events.PublishCreated(ctx, msg); err != nil {
			logging.FromCtx(ctx).Error("publish order.created", "order_id", created.ID, "err", err)
		}
	}

	return created, nil
}

// release undoes the reservations of lines already committed, newest first.
func (uc *PlaceOrder) release(ctx context.Context, reserved []OrderItemInput) {
	for i := len(reserved) - 1; i >= 0; i-- {
		it := reserved[i]
		if err := uc.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			logging.FromCtx(ctx).Error("release reservation",
				"product_id", it.ProductID, "quantity", it.Quantity, "err", err)
		}
	}
}
