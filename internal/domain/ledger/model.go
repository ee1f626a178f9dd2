// Package ledger provides the append-only stock movement log.
//
// The ledger is the sole writer of a product's stock quantity. Every
// stock-affecting event becomes an immutable movement row; the product's
// stock_quantity is incremented by the movement's signed base-unit delta in
// the same transaction, so it always equals the signed sum of the ledger.
package ledger

import (
	"time"

	"negoce/internal/core/id"
	"negoce/internal/core/types"
)

// MovementType classifies stock movements.
type MovementType string

const (
	TypePurchase   MovementType = "purchase"
	TypeSale       MovementType = "sale"
	TypeAdjustment MovementType = "adjustment"
)

// Reference types record the business event a movement originates from.
const (
	ReferenceSale      = "vente"
	ReferencePurchase  = "achat"
	ReferenceInventory = "inventaire"
)

// Outflow reasons for manual stock removals.
const (
	ReasonInternalUse = "consommation interne"
	ReasonBreakage    = "casse"
	ReasonDonation    = "don"
	ReasonSample      = "echantillon"
	ReasonTheft       = "vol"
	ReasonOther       = "autre"
)

// OutflowReasons lists the accepted manual outflow reasons.
var OutflowReasons = []string{
	ReasonInternalUse,
	ReasonBreakage,
	ReasonDonation,
	ReasonSample,
	ReasonTheft,
	ReasonOther,
}

// IsOutflowReason reports whether reason is an accepted outflow reason.
func IsOutflowReason(reason string) bool {
	for _, r := range OutflowReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// StockMovement is one immutable ledger entry.
// Movements are never updated or deleted; corrections are new entries.
type StockMovement struct {
	ID        id.ID        `db:"id" json:"id"`
	ProductID id.ID        `db:"product_id" json:"productId"`
	Type      MovementType `db:"movement_type" json:"movementType"`

	// Quantity is the signed delta in base units: positive increases stock,
	// negative decreases it.
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// UnitID is the unit the event was originally expressed in, kept for
	// display; Quantity is always base units regardless.
	UnitID id.ID `db:"unit_id" json:"unitId"`

	ReferenceType string    `db:"reference_type" json:"referenceType"`
	ReferenceID   *id.ID    `db:"reference_id" json:"referenceId,omitempty"`
	Notes         string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// NewMovement creates a ledger entry with a generated id.
func NewMovement(productID id.ID, movementType MovementType, qty types.Quantity, unitID id.ID, referenceType string, referenceID *id.ID, notes string) *StockMovement {
	return &StockMovement{
		ID:            id.New(),
		ProductID:     productID,
		Type:          movementType,
		Quantity:      qty,
		UnitID:        unitID,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		Notes:         notes,
		CreatedAt:     time.Now().UTC(),
	}
}
