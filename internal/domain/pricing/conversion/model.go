// Package conversion provides the per-product unit conversion table.
//
// A conversion row states how many base units one alternate sale/purchase
// unit represents (e.g. 1 casier = 12 bouteilles). The base unit itself is
// implicitly "1 = 1" and is never stored as a row.
package conversion

import (
	"context"
	"time"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/core/types"
)

// UnitConversion maps a non-base unit to an equivalent base-unit quantity.
type UnitConversion struct {
	ID        id.ID `db:"id" json:"id"`
	ProductID id.ID `db:"product_id" json:"productId"`
	UnitID    id.ID `db:"unit_id" json:"unitId"`

	// EquivalentQuantity is the number of base units in one of this unit.
	// Always positive.
	EquivalentQuantity types.Quantity `db:"equivalent_quantity" json:"equivalentQuantity"`

	// OverridePrice, when set, is the sale price for one of this unit and
	// takes precedence over tier resolution for sales in this unit.
	OverridePrice *types.Money `db:"override_price" json:"overridePrice,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a conversion row with a generated id.
func New(productID, unitID id.ID, equivalent types.Quantity) *UnitConversion {
	now := time.Now().UTC()
	return &UnitConversion{
		ID:                 id.New(),
		ProductID:          productID,
		UnitID:             unitID,
		EquivalentQuantity: equivalent,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Validate checks invariants against the owning product's base unit.
func (c *UnitConversion) Validate(ctx context.Context, baseUnitID id.ID) error {
	if id.IsNil(c.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if id.IsNil(c.UnitID) {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unitId")
	}
	if c.UnitID == baseUnitID {
		return apperror.NewValidation("base unit must not have a conversion row").
			WithDetail("field", "unitId")
	}
	if !c.EquivalentQuantity.IsPositive() {
		return apperror.NewValidation("equivalent quantity must be positive").
			WithDetail("field", "equivalentQuantity")
	}
	if c.OverridePrice != nil && c.OverridePrice.IsNegative() {
		return apperror.NewValidation("override price cannot be negative").
			WithDetail("field", "overridePrice")
	}
	return nil
}
