package product

import (
	"context"

	"negoce/internal/core/id"
)

// ListFilter narrows product listings.
type ListFilter struct {
	ActiveOnly bool
	CategoryID *id.ID
	Limit      int
	Offset     int
}

// Repository defines storage operations for products.
//
// There is deliberately no way to write StockQuantity here: stock updates
// happen only through the ledger repository's atomic increment.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID id.ID) error

	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)
}
