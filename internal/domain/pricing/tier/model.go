// Package tier provides quantity-range price tiers and their resolution.
package tier

import (
	"context"
	"time"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/core/types"
)

// DefaultTierName is reported when no tier matches and the product's base
// unit price applies.
const DefaultTierName = "détail"

// PriceTier associates a quantity range with a unit price.
type PriceTier struct {
	ID        id.ID  `db:"id" json:"id"`
	ProductID id.ID  `db:"product_id" json:"productId"`
	TierName  string `db:"tier_name" json:"tierName"`

	// MinQuantity is the lower bound (inclusive), at least 1.
	MinQuantity types.Quantity `db:"min_quantity" json:"minQuantity"`

	// MaxQuantity is the upper bound (inclusive); nil means unbounded.
	MaxQuantity *types.Quantity `db:"max_quantity" json:"maxQuantity,omitempty"`

	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// New creates a tier with a generated id.
func New(productID id.ID, name string, minQty types.Quantity, unitPrice types.Money) *PriceTier {
	now := time.Now().UTC()
	return &PriceTier{
		ID:          id.New(),
		ProductID:   productID,
		TierName:    name,
		MinQuantity: minQty,
		UnitPrice:   unitPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks tier invariants.
func (t *PriceTier) Validate(ctx context.Context) error {
	if id.IsNil(t.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if t.TierName == "" {
		return apperror.NewValidation("tier name is required").
			WithDetail("field", "tierName")
	}
	if t.MinQuantity < types.NewQuantityFromInt(1) {
		return apperror.NewValidation("min quantity must be at least 1").
			WithDetail("field", "minQuantity")
	}
	if t.MaxQuantity != nil && *t.MaxQuantity < t.MinQuantity {
		return apperror.NewValidation("max quantity cannot be below min quantity").
			WithDetail("field", "maxQuantity")
	}
	if t.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	return nil
}

// Matches reports whether qty falls inside the tier's range.
func (t *PriceTier) Matches(qty types.Quantity) bool {
	if qty < t.MinQuantity {
		return false
	}
	if t.MaxQuantity != nil && qty > *t.MaxQuantity {
		return false
	}
	return true
}
