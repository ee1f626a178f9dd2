// Package product provides the engine-facing product catalog.
//
// StockQuantity is owned by the stock ledger: it always equals the signed
// sum of ledger movements for the product, in base units. No other
// component writes it.
package product

import (
	"context"
	"time"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/core/types"
)

// Product represents a sellable article.
type Product struct {
	ID            id.ID       `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	CategoryID    *id.ID      `db:"category_id" json:"categoryId,omitempty"`
	BaseUnitID    id.ID       `db:"base_unit_id" json:"baseUnitId"`
	BaseUnitPrice types.Money `db:"base_unit_price" json:"baseUnitPrice"`

	// StockQuantity is the current stock level in base units.
	// Written exclusively by the stock ledger.
	StockQuantity types.Quantity `db:"stock_quantity" json:"stockQuantity"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a new active Product with a generated id and zero stock.
func New(name string, baseUnitID id.ID, baseUnitPrice types.Money) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:            id.New(),
		Name:          name,
		BaseUnitID:    baseUnitID,
		BaseUnitPrice: baseUnitPrice,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks required fields.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if id.IsNil(p.BaseUnitID) {
		return apperror.NewValidation("base unit is required").
			WithDetail("field", "baseUnitId")
	}
	if p.BaseUnitPrice.IsNegative() {
		return apperror.NewValidation("base unit price cannot be negative").
			WithDetail("field", "baseUnitPrice")
	}
	return nil
}
