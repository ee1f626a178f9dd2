package promotion

import (
	"time"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/core/types"
)

// UsageCounts carries a promotion's usage so far, supplied by the usage
// store. The evaluator only compares them against the configured limits.
type UsageCounts struct {
	TotalUses    int64
	CustomerUses int64
}

// EvalInput is the sale context a promotion is evaluated against.
type EvalInput struct {
	ProductID  id.ID
	CategoryID *id.ID
	At         time.Time
	Quantity   types.Quantity
	Amount     types.Money
	CustomerID string

	// Usage returns current usage counts for a promotion. Nil means no
	// usage data is available and limits are not enforced.
	Usage func(promotionID id.ID) (UsageCounts, error)
}

// Applied pairs an eligible promotion with its computed discount.
type Applied struct {
	Promotion Promotion   `json:"promotion"`
	Discount  types.Money `json:"discount"`
}

// Eligible reports whether the promotion applies to the input.
func Eligible(p *Promotion, in EvalInput) (bool, error) {
	if !p.IsActive {
		return false, nil
	}
	if !p.WithinPeriod(in.At) {
		return false, nil
	}
	if in.Quantity < p.MinQuantity {
		return false, nil
	}
	if in.Amount.LessThan(p.MinAmount) {
		return false, nil
	}
	if !p.AppliesTo(in.ProductID, in.CategoryID) {
		return false, nil
	}

	if in.Usage != nil && (p.MaxTotalUses != nil || p.MaxUsesPerCustomer != nil) {
		usage, err := in.Usage(p.ID)
		if err != nil {
			return false, err
		}
		if p.MaxTotalUses != nil && usage.TotalUses >= *p.MaxTotalUses {
			return false, nil
		}
		if p.MaxUsesPerCustomer != nil && usage.CustomerUses >= *p.MaxUsesPerCustomer {
			return false, nil
		}
	}

	if p.Condition != "" {
		ok, err := evalCondition(p.Condition, in.Quantity.Float64(), amountFloat(in.Amount), in.CustomerID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// ComputeDiscount returns the discount a promotion grants on a gross
// amount for a quantity. Pack specials are priced by the pack collaborator
// and yield zero here. The result never exceeds the amount.
func ComputeDiscount(p *Promotion, amount types.Money, qty types.Quantity) (types.Money, error) {
	if !qty.IsPositive() {
		return types.ZeroMoney(), apperror.NewInvalidQuantity("quantity must be positive").
			WithDetail("quantity", qty)
	}

	var discount types.Money

	switch p.Type {
	case TypePercentage:
		if p.DiscountPercentage == nil {
			return types.ZeroMoney(), apperror.NewInvalidPromotionConfig("percentage promotion without percentage").
				WithDetail("promotion_id", p.ID)
		}
		discount = amount.Mul(*p.DiscountPercentage).Div(types.NewMoney(100))

	case TypeFixedAmount:
		if p.DiscountAmount == nil {
			return types.ZeroMoney(), apperror.NewInvalidPromotionConfig("fixed amount promotion without amount").
				WithDetail("promotion_id", p.ID)
		}
		discount = *p.DiscountAmount

	case TypeBuyXGetY:
		if p.BuyQuantity == nil || *p.BuyQuantity <= 0 || p.GetQuantity == nil {
			return types.ZeroMoney(), apperror.NewInvalidPromotionConfig("buy_x_get_y promotion misconfigured").
				WithDetail("promotion_id", p.ID)
		}
		// free units = floor(qty / buy) * get; discount = free * implied unit price
		buy := types.NewQuantityFromInt(*p.BuyQuantity)
		freeUnits := int64(qty) / int64(buy) * *p.GetQuantity
		if freeUnits <= 0 {
			return types.ZeroMoney(), nil
		}
		impliedUnitPrice := amount.Div(qty.Decimal())
		discount = impliedUnitPrice.Mul(types.NewMoney(float64(freeUnits)))

	case TypePackSpecial:
		return types.ZeroMoney(), nil

	default:
		return types.ZeroMoney(), apperror.NewInvalidPromotionConfig("unknown promotion type").
			WithDetail("type", string(p.Type))
	}

	// Never drive the net total negative.
	if discount.GreaterThan(amount) {
		discount = amount
	}
	if discount.IsNegative() {
		discount = types.ZeroMoney()
	}

	return discount, nil
}

// Best evaluates all candidate promotions and returns the single one with
// the largest discount, or nil when none is eligible. Promotions are not
// stacked; one sale line benefits from at most one rule.
func Best(candidates []Promotion, in EvalInput) (*Applied, error) {
	var best *Applied

	for i := range candidates {
		p := &candidates[i]

		ok, err := Eligible(p, in)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		discount, err := ComputeDiscount(p, in.Amount, in.Quantity)
		if err != nil {
			return nil, err
		}
		if !discount.IsPositive() {
			continue
		}

		if best == nil || discount.GreaterThan(best.Discount) {
			best = &Applied{Promotion: *p, Discount: discount}
		}
	}

	return best, nil
}

func amountFloat(m types.Money) float64 {
	f, _ := m.Float64()
	return f
}
