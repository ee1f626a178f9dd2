package conversion

import (
	"context"

	"negoce/internal/core/id"
)

// Repository defines storage operations for unit conversions.
type Repository interface {
	Create(ctx context.Context, c *UnitConversion) error
	Update(ctx context.Context, c *UnitConversion) error
	Delete(ctx context.Context, conversionID id.ID) error

	GetByID(ctx context.Context, conversionID id.ID) (*UnitConversion, error)

	// ListByProduct returns all conversion rows for a product.
	ListByProduct(ctx context.Context, productID id.ID) ([]UnitConversion, error)
}
