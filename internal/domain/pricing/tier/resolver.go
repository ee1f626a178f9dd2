package tier

import (
	"bytes"
	"context"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/core/types"
	"negoce/internal/domain/catalog/product"
	"negoce/pkg/logger"
)

// Resolution is the outcome of tier resolution for a quantity.
type Resolution struct {
	UnitPrice types.Money `json:"unitPrice"`
	TierName  string      `json:"tierName"`

	// TierID is nil when the product's base unit price applied.
	TierID *id.ID `json:"tierId,omitempty"`
}

// Resolve picks the unit price for a requested quantity.
//
// Among tiers whose range contains the quantity, the one with the largest
// MinQuantity wins: a larger order qualifies for the deepest bracket it is
// eligible for. Overlapping ranges are a data-quality issue tolerated via
// this rule; ties break deterministically by lowest tier id. With no match
// the product's base unit price applies under the implicit "détail" tier.
func Resolve(p *product.Product, tiers []PriceTier, qty types.Quantity) (Resolution, error) {
	if !qty.IsPositive() {
		return Resolution{}, apperror.NewInvalidQuantity("quantity must be positive").
			WithDetail("quantity", qty)
	}

	var best *PriceTier
	for i := range tiers {
		t := &tiers[i]
		if !t.Matches(qty) {
			continue
		}
		if best == nil || t.MinQuantity > best.MinQuantity ||
			(t.MinQuantity == best.MinQuantity && bytes.Compare(t.ID[:], best.ID[:]) < 0) {
			best = t
		}
	}

	if best == nil {
		return Resolution{
			UnitPrice: p.BaseUnitPrice,
			TierName:  DefaultTierName,
		}, nil
	}

	tierID := best.ID
	return Resolution{
		UnitPrice: best.UnitPrice,
		TierName:  best.TierName,
		TierID:    &tierID,
	}, nil
}

// Service resolves prices against stored tiers.
type Service struct {
	repo Repository
}

// NewService creates a new tier service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ResolvePrice loads the product's tiers and resolves the applicable price.
func (s *Service) ResolvePrice(ctx context.Context, p *product.Product, qty types.Quantity) (Resolution, error) {
	tiers, err := s.repo.ListByProduct(ctx, p.ID)
	if err != nil {
		return Resolution{}, err
	}
	return Resolve(p, tiers, qty)
}

// Create validates and persists a tier.
func (s *Service) Create(ctx context.Context, t *PriceTier) error {
	if err := t.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return err
	}

	logger.Info(ctx, "price tier created",
		"product_id", t.ProductID,
		"tier", t.TierName,
		"min_quantity", t.MinQuantity,
	)
	return nil
}

// Update modifies a tier.
func (s *Service) Update(ctx context.Context, t *PriceTier) error {
	if err := t.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, t)
}

// Delete removes a tier.
func (s *Service) Delete(ctx context.Context, tierID id.ID) error {
	return s.repo.Delete(ctx, tierID)
}

// GetByID retrieves a tier.
func (s *Service) GetByID(ctx context.Context, tierID id.ID) (*PriceTier, error) {
	return s.repo.GetByID(ctx, tierID)
}

// ListByProduct returns all tiers for a product.
func (s *Service) ListByProduct(ctx context.Context, productID id.ID) ([]PriceTier, error) {
	return s.repo.ListByProduct(ctx, productID)
}
