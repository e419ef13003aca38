package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomkit/shop-api/internal/domain"
)

// fakeProductRepo mimics the mongo repo contract: 24-hex ids, sentinel
// errors, and a conditional decrement that never goes negative.
type fakeProductRepo struct {
	mu       sync.Mutex
	seq      int
	products map[string]domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]domain.Product)}
}

func (f *fakeProductRepo) Insert(_ context.Context, p domain.Product) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = fmt.Sprintf("%024x", f.seq)
	f.products[p.ID] = p
	return p.ID, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if len(id) != 24 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProductID, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	cp := p
	return &cp, nil
}

func (f *fakeProductRepo) List(_ context.Context, _ ProductFilter, _ Page) ([]domain.Product, int64, error) {
	return nil, 0, nil
}

func (f *fakeProductRepo) DecrementStock(_ context.Context, id string, qty int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.AvailableQuantity < qty {
		return false, nil
	}
	p.AvailableQuantity -= qty
	f.products[id] = p
	return true, nil
}

func (f *fakeProductRepo) IncrementStock(_ context.Context, id string, qty int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	p.AvailableQuantity += qty
	f.products[id] = p
	return nil
}

func (f *fakeProductRepo) stock(id string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].AvailableQuantity
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	seq    int
	orders map[string]domain.Order

	failInsert bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]domain.Order)}
}

func (f *fakeOrderRepo) Insert(_ context.Context, o domain.Order) (string, error) {
	if f.failInsert {
		return "", errors.New("storage unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	o.ID = fmt.Sprintf("%024x", 0x1000000+f.seq)
	f.orders[o.ID] = o
	return o.ID, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	cp := o
	return &cp, nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID string, _ Page) ([]domain.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fakeIdemStore struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{locks: make(map[string]bool), values: make(map[string]string)}
}

func (f *fakeIdemStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := scope + ":" + key
	if f.locks[k] {
		return false, nil
	}
	f.locks[k] = true
	return true, nil
}

func (f *fakeIdemStore) Remember(_ context.Context, scope, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[scope+":"+key] = value
	return nil
}

func (f *fakeIdemStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[scope+":"+key]
	return v, ok, nil
}

type capturedEvents struct {
	mu   sync.Mutex
	msgs []OrderCreatedMsg
}

func (e *capturedEvents) PublishCreated(_ context.Context, msg OrderCreatedMsg) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
	return nil
}

func seedProduct(t *testing.T, products *fakeProductRepo, name string, price float64, qty int64) string {
	t.Helper()
	id, err := products.Insert(context.Background(), domain.Product{
		Name: name, Price: price, Size: "M", AvailableQuantity: qty,
	})
	require.NoError(t, err)
	return id
}

func TestPlaceOrder_Success(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	events := &capturedEvents{}
	uc := NewPlaceOrder(products, orders, nil, events)

	widget := seedProduct(t, products, "Widget", 10.00, 5)

	o, err := uc.Execute(ctx, PlaceOrderInput{
		UserID: "u1",
		Items:  []OrderItemInput{{ProductID: widget, Quantity: 3}},
	})
	require.NoError(t, err)
	require.NotNil(t, o)

	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, 30.00, o.TotalAmount)
	require.Len(t, o.Items, 1)
	assert.Equal(t, widget, o.Items[0].ProductID)
	assert.Equal(t, int64(3), o.Items[0].Quantity)
	assert.Equal(t, 10.00, o.Items[0].Price)
	assert.False(t, o.CreatedAt.IsZero())

	assert.Equal(t, int64(2), products.stock(widget))

	// event published after commit
	require.Len(t, events.msgs, 1)
	assert.Equal(t, o.ID, events.msgs[0].OrderID)
}

func TestPlaceOrder_TotalRounding(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	uc := NewPlaceOrder(products, orders, nil, nil)

	// 3 * 0.1 accumulates binary noise without explicit rounding
	p := seedProduct(t, products, "Sticker", 0.10, 10)

	o, err := uc.Execute(ctx, PlaceOrderInput{
		UserID: "u1",
		Items:  []OrderItemInput{{ProductID: p, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.30, o.TotalAmount)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	uc := NewPlaceOrder(products, orders, nil, nil)

	widget := seedProduct(t, products, "Widget", 10.00, 2)

	_, err := uc.Execute(ctx, PlaceOrderInput{
		UserID: "u1",
		Items:  []OrderItemInput{{ProductID: widget, Quantity: 3}},
	})
	var stock *InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, int64(2), stock.Available)
	assert.Equal(t, int64(3), stock.Requested)

	assert.Equal(t, int64(2), products.stock(widget), "stock must be untouched")
	assert.Zero(t, orders.count(), "no order document on failure")
}

func TestPlaceOrder_SecondOrderDrainsStock(t *testing.T) {
	// concrete scenario: stock 5, two orders of 3
	ctx := context.Background()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	uc := NewPlaceOrder(products, orders, nil, nil)

	widget := seedProduct(t, products, "Widget", 10.00, 5)
	in := PlaceOrderInput{UserID: "u1", Items: []OrderItemInput{{ProductID: widget, Quantity: 3}}}

	o, err := uc.Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 30.00, o.TotalAmount)
	assert.Equal(t, int64(2), products.stock(widget))

	_, err = uc.Execute(ctx, in)
	var stock *InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, int64(2), stock.Available)
	assert.Equal(t, int64(3), stock.Requested)
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	uc := NewPlaceOrder(products, orders, nil, nil)

	_, err := uc.Execute(ctx, PlaceOrderInput{
		UserID: "u1",
		Items:  []OrderItemInput{{ProductID: "ffffffffffffffffffffffff", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, orders.count())
}

func TestPlaceOrder_MalformedProductID(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	uc := NewPlaceOrder(products, orders, nil, nil)

	_, err := uc.Execute(ctx, PlaceOrderInput{
		UserID: "u1",
		Items:  []OrderItemInput{{ProductID: "nope", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrInvalidProductID)
}

func TestPlaceOrder_InvalidInput(t *testing.T) {
	ctx := context.Background()
	uc := NewPlaceOrder(newFakeProductRepo(), newFakeOrderRepo(), nil, nil)

	_, err := uc.Execute(ctx, PlaceOrderInput{UserID: "", Items: []OrderItemInput{{ProductID: "x", Quantity: 1}}})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, PlaceOrderInput{UserID: "u1"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, PlaceOrderInput{UserID: "u1", Items: []OrderItemInput{{ProductID: "x", Quantity: 0}}})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlaceOrder_MidOrderFailureReleasesReservations(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	uc := NewPlaceOrder(products, orders, nil, nil)

	a := seedProduct(t, products, "A", 5.00, 10)
	b := seedProduct(t, products, "B", 7.00, 1)

	_, err := uc.Execute(ctx, PlaceOrderInput{
		UserID: "u1",
		Items: []OrderItemInput{
			{ProductID: a, Quantity: 4},
			{ProductID: b, Quantity: 2}, // fails, only 1 in stock
		},
	})
	var stock *InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, b, stock.ProductID)

	assert.Equal(t, int64(10), products.stock(a), "first line's reservation must be released")
	assert.Equal(t, int64(1), products.stock(b))
	assert.Zero(t, orders.count())
}

func TestPlaceOrder_InsertFailureReleasesReservations(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	orders.failInsert = true
	uc := NewPlaceOrder(products, orders, nil, nil)

	a := seedProduct(t, products, "A", 5.00, 10)

	_, err := uc.Execute(ctx, PlaceOrderInput{
		UserID: "u1",
		Items:  []OrderItemInput{{ProductID: a, Quantity: 4}},
	})
	require.Error(t, err)
	assert.Equal(t, int64(10), products.stock(a))
}

func TestPlaceOrder_Idempotency(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	idem := newFakeIdemStore()
	uc := NewPlaceOrder(products, orders, idem, nil)

	widget := seedProduct(t, products, "Widget", 10.00, 10)
	in := PlaceOrderInput{
		UserID:         "u1",
		IdempotencyKey: "key-1",
		Items:          []OrderItemInput{{ProductID: widget, Quantity: 3}},
	}

	first, err := uc.Execute(ctx, in)
	require.NoError(t, err)

	second, err := uc.Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(7), products.stock(widget), "replay must not decrement again")
	assert.Equal(t, 1, orders.count())
}

// brokenIdemStore simulates a redis outage during recall.
type brokenIdemStore struct {
	fakeIdemStore
	recallErr error
}

func (f *brokenIdemStore) Recall(context.Context, string, string) (string, bool, error) {
	return "", false, f.recallErr
}

func TestPlaceOrder_IdemStoreFailureIsStorageError(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	idem := &brokenIdemStore{recallErr: errors.New("redis: connection refused")}
	uc := NewPlaceOrder(products, orders, idem, nil)

	widget := seedProduct(t, products, "Widget", 10.00, 10)

	_, err := uc.Execute(ctx, PlaceOrderInput{
		UserID:         "u1",
		IdempotencyKey: "key-1",
		Items:          []OrderItemInput{{ProductID: widget, Quantity: 1}},
	})
	require.ErrorIs(t, err, idem.recallErr, "infra fault must surface, not masquerade as a domain error")
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(10), products.stock(widget))
	assert.Zero(t, orders.count())
}

func TestPlaceOrder_DuplicateInFlight(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	idem := newFakeIdemStore()
	uc := NewPlaceOrder(products, orders, idem, nil)

	widget := seedProduct(t, products, "Widget", 10.00, 10)

	// lock is held but no order mapped yet: a concurrent duplicate
	ok, err := idem.TryLock(ctx, "u1", "key-1")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = uc.Execute(ctx, PlaceOrderInput{
		UserID:         "u1",
		IdempotencyKey: "key-1",
		Items:          []OrderItemInput{{ProductID: widget, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, int64(10), products.stock(widget))
}
