package dto

import (
	"time"

	"negoce/internal/core/id"
	"negoce/internal/core/types"
	"negoce/internal/domain/pricing/conversion"
	"negoce/internal/domain/pricing/promotion"
	"negoce/internal/domain/pricing/tier"
)

// --- Unit conversions ---

// CreateConversionRequest adds a conversion row for a product.
type CreateConversionRequest struct {
	UnitID             id.ID          `json:"unitId" binding:"required"`
	EquivalentQuantity types.Quantity `json:"equivalentQuantity"`
	OverridePrice      *types.Money   `json:"overridePrice,omitempty"`
}

// ToEntity converts the request to a domain conversion row.
func (r CreateConversionRequest) ToEntity(productID id.ID) *conversion.UnitConversion {
	c := conversion.New(productID, r.UnitID, r.EquivalentQuantity)
	c.OverridePrice = r.OverridePrice
	return c
}

// UpdateConversionRequest modifies a conversion row.
type UpdateConversionRequest struct {
	EquivalentQuantity types.Quantity `json:"equivalentQuantity"`
	OverridePrice      *types.Money   `json:"overridePrice,omitempty"`
}

// ApplyTo copies updatable fields onto an existing conversion row.
func (r UpdateConversionRequest) ApplyTo(c *conversion.UnitConversion) {
	c.EquivalentQuantity = r.EquivalentQuantity
	c.OverridePrice = r.OverridePrice
	c.UpdatedAt = time.Now().UTC()
}

// ConvertQuery requests a quantity conversion for a product.
type ConvertQuery struct {
	UnitID   string         `form:"unitId" binding:"required"`
	Quantity types.Quantity `form:"quantity"`

	// Direction is "to_base" (default) or "from_base".
	Direction string `form:"direction"`
}

// ConvertResponse reports a converted quantity.
type ConvertResponse struct {
	ProductID id.ID          `json:"productId"`
	UnitID    id.ID          `json:"unitId"`
	Input     types.Quantity `json:"input"`
	Output    types.Quantity `json:"output"`
	Direction string         `json:"direction"`
}

// --- Price tiers ---

// CreateTierRequest adds a price tier for a product.
type CreateTierRequest struct {
	TierName    string          `json:"tierName" binding:"required"`
	MinQuantity types.Quantity  `json:"minQuantity"`
	MaxQuantity *types.Quantity `json:"maxQuantity,omitempty"`
	UnitPrice   types.Money     `json:"unitPrice"`
}

// ToEntity converts the request to a domain tier.
func (r CreateTierRequest) ToEntity(productID id.ID) *tier.PriceTier {
	t := tier.New(productID, r.TierName, r.MinQuantity, r.UnitPrice)
	t.MaxQuantity = r.MaxQuantity
	return t
}

// UpdateTierRequest modifies a price tier.
type UpdateTierRequest struct {
	TierName    string          `json:"tierName" binding:"required"`
	MinQuantity types.Quantity  `json:"minQuantity"`
	MaxQuantity *types.Quantity `json:"maxQuantity,omitempty"`
	UnitPrice   types.Money     `json:"unitPrice"`
}

// ApplyTo copies updatable fields onto an existing tier.
func (r UpdateTierRequest) ApplyTo(t *tier.PriceTier) {
	t.TierName = r.TierName
	t.MinQuantity = r.MinQuantity
	t.MaxQuantity = r.MaxQuantity
	t.UnitPrice = r.UnitPrice
	t.UpdatedAt = time.Now().UTC()
}

// ResolvePriceQuery asks for the applicable unit price at a quantity.
type ResolvePriceQuery struct {
	Quantity types.Quantity `form:"quantity"`
}

// --- Promotions ---

// PromotionRequest creates or updates a promotion.
type PromotionRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`

	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`

	MinQuantity types.Quantity `json:"minQuantity"`
	MinAmount   types.Money    `json:"minAmount"`

	DiscountPercentage *types.Money `json:"discountPercentage,omitempty"`
	DiscountAmount     *types.Money `json:"discountAmount,omitempty"`
	BuyQuantity        *int64       `json:"buyQuantity,omitempty"`
	GetQuantity        *int64       `json:"getQuantity,omitempty"`

	MaxUsesPerCustomer *int64 `json:"maxUsesPerCustomer,omitempty"`
	MaxTotalUses       *int64 `json:"maxTotalUses,omitempty"`

	ApplicableProducts   []id.ID `json:"applicableProducts,omitempty"`
	ApplicableCategories []id.ID `json:"applicableCategories,omitempty"`

	Condition string `json:"condition,omitempty"`
	IsActive  bool   `json:"isActive"`
}

// ToEntity converts the request to a new domain promotion.
func (r PromotionRequest) ToEntity() *promotion.Promotion {
	now := time.Now().UTC()
	return &promotion.Promotion{
		ID:                   id.New(),
		Name:                 r.Name,
		Type:                 promotion.Type(r.Type),
		StartDate:            r.StartDate,
		EndDate:              r.EndDate,
		MinQuantity:          r.MinQuantity,
		MinAmount:            r.MinAmount,
		DiscountPercentage:   r.DiscountPercentage,
		DiscountAmount:       r.DiscountAmount,
		BuyQuantity:          r.BuyQuantity,
		GetQuantity:          r.GetQuantity,
		MaxUsesPerCustomer:   r.MaxUsesPerCustomer,
		MaxTotalUses:         r.MaxTotalUses,
		ApplicableProducts:   r.ApplicableProducts,
		ApplicableCategories: r.ApplicableCategories,
		Condition:            r.Condition,
		IsActive:             r.IsActive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// ApplyTo copies updatable fields onto an existing promotion. Usage counters
// are preserved.
func (r PromotionRequest) ApplyTo(p *promotion.Promotion) {
	p.Name = r.Name
	p.Type = promotion.Type(r.Type)
	p.StartDate = r.StartDate
	p.EndDate = r.EndDate
	p.MinQuantity = r.MinQuantity
	p.MinAmount = r.MinAmount
	p.DiscountPercentage = r.DiscountPercentage
	p.DiscountAmount = r.DiscountAmount
	p.BuyQuantity = r.BuyQuantity
	p.GetQuantity = r.GetQuantity
	p.MaxUsesPerCustomer = r.MaxUsesPerCustomer
	p.MaxTotalUses = r.MaxTotalUses
	p.ApplicableProducts = r.ApplicableProducts
	p.ApplicableCategories = r.ApplicableCategories
	p.Condition = r.Condition
	p.IsActive = r.IsActive
	p.UpdatedAt = time.Now().UTC()
}
