// Package sales provides sale checkout: pricing, promotions, ledger writes
// and promotion usage accounting in a single transaction.
package sales

import (
	"time"

	"negoce/internal/core/id"
	"negoce/internal/core/types"
)

// Sale is a finalized sale document.
type Sale struct {
	ID         id.ID  `db:"id" json:"id"`
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	GrossAmount    types.Money `db:"gross_amount" json:"grossAmount"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`

	Notes     string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Lines []SaleLine `db:"-" json:"lines"`
}

// SaleLine is one priced line item of a sale.
type SaleLine struct {
	ID        id.ID `db:"id" json:"id"`
	SaleID    id.ID `db:"sale_id" json:"saleId"`
	LineNo    int   `db:"line_no" json:"lineNo"`
	ProductID id.ID `db:"product_id" json:"productId"`

	// UnitID is the sale unit; Quantity is expressed in it.
	UnitID   id.ID          `db:"unit_id" json:"unitId"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// BaseQuantity is the converted base-unit quantity the ledger recorded.
	BaseQuantity types.Quantity `db:"base_quantity" json:"baseQuantity"`

	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	TierName  string      `db:"tier_name" json:"tierName"`

	PromotionID    *id.ID      `db:"promotion_id" json:"promotionId,omitempty"`
	GrossAmount    types.Money `db:"gross_amount" json:"grossAmount"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	LineTotal      types.Money `db:"line_total" json:"lineTotal"`
}
