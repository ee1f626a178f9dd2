package sales

import (
	"context"

	"negoce/internal/core/id"
)

// Repository persists finalized sales.
type Repository interface {
	// Create inserts the sale and its lines within the caller's transaction.
	Create(ctx context.Context, sale *Sale) error

	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
}
