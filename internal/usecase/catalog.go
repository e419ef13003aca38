package usecase

import (
	"context"

	"github.com/ecomkit/shop-api/internal/domain"
)

// Catalog is the CRUD-lite surface over the products collection.
type Catalog struct {
	products ProductRepo
}

func NewCatalog(products ProductRepo) *Catalog {
	return &Catalog{products: products}
}

func (uc *Catalog) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.Name == "" || p.Price < 0 || p.AvailableQuantity < 0 {
		return nil, ErrInvalidInput
	}
	id, err := uc.products.Insert(ctx, p)
	if err != nil {
		return nil, err
	}
	return uc.products.GetByID(ctx, id)
}

func (uc *Catalog) List(ctx context.Context, f ProductFilter, page Page) ([]domain.Product, PageInfo, error) {
	page = page.Normalize()
	items, total, err := uc.products.List(ctx, f, page)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return items, NewPageInfo(page, total), nil
}
