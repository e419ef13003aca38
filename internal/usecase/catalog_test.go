package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomkit/shop-api/internal/domain"
)

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   Page
		want Page
	}{
		{"defaults", Page{}, Page{Limit: 10, Offset: 0}},
		{"negative limit", Page{Limit: -5, Offset: 3}, Page{Limit: 10, Offset: 3}},
		{"limit capped", Page{Limit: 500}, Page{Limit: 100}},
		{"negative offset", Page{Limit: 20, Offset: -1}, Page{Limit: 20, Offset: 0}},
		{"in range", Page{Limit: 1, Offset: 99}, Page{Limit: 1, Offset: 99}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestNewPageInfo_HasNext(t *testing.T) {
	assert.True(t, NewPageInfo(Page{Limit: 10, Offset: 0}, 11).HasNext)
	assert.False(t, NewPageInfo(Page{Limit: 10, Offset: 0}, 10).HasNext)
	assert.False(t, NewPageInfo(Page{Limit: 10, Offset: 10}, 10).HasNext)
	assert.True(t, NewPageInfo(Page{Limit: 10, Offset: 5}, 16).HasNext)
}

func TestCatalogCreate(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductRepo()
	uc := NewCatalog(products)

	p, err := uc.Create(ctx, domain.Product{
		Name: "Wireless Headphones", Price: 99.99, Size: "large", AvailableQuantity: 50,
	})
	require.NoError(t, err)
	assert.Len(t, p.ID, 24, "id must be a 24-hex storage identifier")
	assert.Equal(t, "Wireless Headphones", p.Name)
	assert.Equal(t, int64(50), p.AvailableQuantity)
}

func TestCatalogCreate_Invalid(t *testing.T) {
	ctx := context.Background()
	uc := NewCatalog(newFakeProductRepo())

	_, err := uc.Create(ctx, domain.Product{Name: "", Price: 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Create(ctx, domain.Product{Name: "X", Price: -1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Create(ctx, domain.Product{Name: "X", Price: 1, AvailableQuantity: -2})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderQuery_RequiresUser(t *testing.T) {
	ctx := context.Background()
	uc := NewOrderQuery(newFakeOrderRepo())
	_, _, err := uc.ListByUser(ctx, "", Page{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRoundAmount(t *testing.T) {
	assert.Equal(t, 0.30, domain.RoundAmount(0.1+0.1+0.1))
	assert.Equal(t, 59.97, domain.RoundAmount(19.99*3))
	assert.Equal(t, 0.0, domain.RoundAmount(0))
}
