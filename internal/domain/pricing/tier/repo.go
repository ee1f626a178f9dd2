package tier

import (
	"context"

	"negoce/internal/core/id"
)

// Repository defines storage operations for price tiers.
type Repository interface {
	Create(ctx context.Context, t *PriceTier) error
	Update(ctx context.Context, t *PriceTier) error
	Delete(ctx context.Context, tierID id.ID) error

	GetByID(ctx context.Context, tierID id.ID) (*PriceTier, error)

	// ListByProduct returns all tiers for a product ordered by min_quantity.
	ListByProduct(ctx context.Context, productID id.ID) ([]PriceTier, error)
}
