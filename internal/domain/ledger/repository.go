package ledger

import (
	"context"
	"time"

	"negoce/internal/core/id"
	"negoce/internal/core/types"
)

// Repository defines storage operations for the stock ledger.
type Repository interface {
	// ApplyMovement performs the atomic unit of work: a single
	// `stock_quantity = stock_quantity + delta` update on the product row
	// and the movement insert, within the caller's transaction. Returns the
	// stock level after the increment.
	ApplyMovement(ctx context.Context, m *StockMovement) (types.Quantity, error)

	// GetStockForUpdate reads a product's stock with a row lock, for
	// availability checks and inventory counts inside a transaction.
	GetStockForUpdate(ctx context.Context, productID id.ID) (types.Quantity, error)

	// SumMovements returns the signed sum of all movements for a product.
	// Used by consistency checks; must equal the product's stock_quantity.
	SumMovements(ctx context.Context, productID id.ID) (types.Quantity, error)

	// List returns movements matching the filter, created_at descending.
	List(ctx context.Context, filter MovementFilter) ([]StockMovement, error)
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	ProductID     *id.ID
	MovementType  *MovementType
	ReferenceType *string
	FromDate      *time.Time
	ToDate        *time.Time
	Limit         int
	Offset        int
}
