package promotion

import (
	"context"
	"time"

	"negoce/internal/core/id"
)

// Repository defines storage operations for promotions and their usage.
type Repository interface {
	Create(ctx context.Context, p *Promotion) error
	Update(ctx context.Context, p *Promotion) error
	Delete(ctx context.Context, promotionID id.ID) error

	GetByID(ctx context.Context, promotionID id.ID) (*Promotion, error)
	List(ctx context.Context) ([]Promotion, error)

	// ListActive returns active promotions whose period covers at.
	ListActive(ctx context.Context, at time.Time) ([]Promotion, error)

	// CountUses returns current usage counts. customerID may be nil for
	// anonymous sales (customer count is then zero).
	CountUses(ctx context.Context, promotionID id.ID, customerID *id.ID) (UsageCounts, error)

	// RecordUse increments current_uses and appends a usage row, guarded by
	// max_total_uses. Must run inside the sale's transaction; returns
	// PROMOTION_EXHAUSTED when the limit was hit concurrently.
	RecordUse(ctx context.Context, promotionID id.ID, customerID *id.ID, saleID id.ID) error
}
