// Package promotion provides time-bounded discount rules evaluated on top
// of tier pricing.
package promotion

import (
	"context"
	"time"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/core/types"
)

// Type discriminates how a promotion's discount is computed.
type Type string

const (
	TypePercentage  Type = "percentage"
	TypeFixedAmount Type = "fixed_amount"
	TypeBuyXGetY    Type = "buy_x_get_y"

	// TypePackSpecial is priced by the pack collaborator; the evaluator
	// recognizes it and skips it.
	TypePackSpecial Type = "pack_special"
)

// Promotion is a discount rule scoped to products and/or categories.
type Promotion struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Type Type   `db:"type" json:"type"`

	// StartDate and EndDate bound eligibility. EndDate is inclusive to the
	// end of its calendar day.
	StartDate time.Time `db:"start_date" json:"startDate"`
	EndDate   time.Time `db:"end_date" json:"endDate"`

	MinQuantity types.Quantity `db:"min_quantity" json:"minQuantity"`
	MinAmount   types.Money    `db:"min_amount" json:"minAmount"`

	DiscountPercentage *types.Money `db:"discount_percentage" json:"discountPercentage,omitempty"`
	DiscountAmount     *types.Money `db:"discount_amount" json:"discountAmount,omitempty"`
	BuyQuantity        *int64       `db:"buy_quantity" json:"buyQuantity,omitempty"`
	GetQuantity        *int64       `db:"get_quantity" json:"getQuantity,omitempty"`

	MaxUsesPerCustomer *int64 `db:"max_uses_per_customer" json:"maxUsesPerCustomer,omitempty"`
	MaxTotalUses       *int64 `db:"max_total_uses" json:"maxTotalUses,omitempty"`

	// CurrentUses is incremented transactionally each time the promotion is
	// applied to a finalized sale; never decremented.
	CurrentUses int64 `db:"current_uses" json:"currentUses"`

	// Empty scope lists mean "all products".
	ApplicableProducts   []id.ID `db:"applicable_products" json:"applicableProducts"`
	ApplicableCategories []id.ID `db:"applicable_categories" json:"applicableCategories"`

	// Condition is an optional CEL expression over quantity, amount and
	// customer_id; when set it must also evaluate to true for eligibility.
	Condition string `db:"condition" json:"condition,omitempty"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks configuration invariants at creation time. Evaluation
// never guards against a bad configuration; it must be rejected here.
func (p *Promotion) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.EndDate.Before(p.StartDate) {
		return apperror.NewInvalidPromotionConfig("end date is before start date")
	}
	if p.MinQuantity.IsNegative() {
		return apperror.NewInvalidPromotionConfig("min quantity cannot be negative")
	}
	if p.MinAmount.IsNegative() {
		return apperror.NewInvalidPromotionConfig("min amount cannot be negative")
	}

	switch p.Type {
	case TypePercentage:
		if p.DiscountPercentage == nil || !p.DiscountPercentage.IsPositive() {
			return apperror.NewInvalidPromotionConfig("percentage promotion requires a positive discount percentage")
		}
		if p.DiscountPercentage.GreaterThan(types.NewMoney(100)) {
			return apperror.NewInvalidPromotionConfig("discount percentage cannot exceed 100")
		}
	case TypeFixedAmount:
		if p.DiscountAmount == nil || !p.DiscountAmount.IsPositive() {
			return apperror.NewInvalidPromotionConfig("fixed amount promotion requires a positive discount amount")
		}
	case TypeBuyXGetY:
		if p.BuyQuantity == nil || *p.BuyQuantity <= 0 {
			return apperror.NewInvalidPromotionConfig("buy quantity must be positive")
		}
		if p.GetQuantity == nil || *p.GetQuantity <= 0 {
			return apperror.NewInvalidPromotionConfig("get quantity must be positive")
		}
	case TypePackSpecial:
		// Pack economics live in the pack collaborator.
	default:
		return apperror.NewInvalidPromotionConfig("unknown promotion type").
			WithDetail("type", string(p.Type))
	}

	if p.MaxTotalUses != nil && *p.MaxTotalUses <= 0 {
		return apperror.NewInvalidPromotionConfig("max total uses must be positive when set")
	}
	if p.MaxUsesPerCustomer != nil && *p.MaxUsesPerCustomer <= 0 {
		return apperror.NewInvalidPromotionConfig("max uses per customer must be positive when set")
	}

	if p.Condition != "" {
		if err := ValidateCondition(p.Condition); err != nil {
			return err
		}
	}

	return nil
}

// WithinPeriod reports whether at falls inside [StartDate, end of EndDate's
// day). A promotion ending 2024-01-31 is eligible at 23:59:59 that day and
// ineligible at the next midnight.
func (p *Promotion) WithinPeriod(at time.Time) bool {
	if at.Before(p.StartDate) {
		return false
	}
	// Day boundary in the end date's own location, not the UTC epoch.
	e := p.EndDate
	end := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, e.Location()).AddDate(0, 0, 1)
	return at.Before(end)
}

// AppliesTo reports whether the promotion's scope covers the product.
// Both lists empty means "all products".
func (p *Promotion) AppliesTo(productID id.ID, categoryID *id.ID) bool {
	if len(p.ApplicableProducts) == 0 && len(p.ApplicableCategories) == 0 {
		return true
	}
	for _, pid := range p.ApplicableProducts {
		if pid == productID {
			return true
		}
	}
	if categoryID != nil {
		for _, cid := range p.ApplicableCategories {
			if cid == *categoryID {
				return true
			}
		}
	}
	return false
}
