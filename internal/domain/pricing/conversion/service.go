package conversion

import (
	"context"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/core/types"
	"negoce/internal/domain/catalog/product"
	"negoce/pkg/logger"
)

// Service converts quantities between a product's base unit and its
// configured sale/purchase units.
type Service struct {
	repo  Repository
	cache *cache
}

// NewService creates a new conversion service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		cache: newCache(),
	}
}

// ToBase converts a quantity expressed in unitID to the product's base unit.
//
// The base unit passes through unchanged. Any other unit must have a
// configured conversion row; a missing row is a configuration error, never
// a silent 1:1 assumption.
func (s *Service) ToBase(ctx context.Context, p *product.Product, unitID id.ID, qty types.Quantity) (types.Quantity, error) {
	if qty.IsNegative() {
		return 0, apperror.NewInvalidQuantity("quantity cannot be negative").
			WithDetail("quantity", qty)
	}

	if unitID == p.BaseUnitID {
		return qty, nil
	}

	conv, err := s.lookup(ctx, p.ID, unitID)
	if err != nil {
		return 0, err
	}

	baseQty, err := qty.MulFactor(conv.EquivalentQuantity)
	if err != nil {
		return 0, apperror.NewInvalidQuantity("quantity exceeds the representable range").
			WithDetail("quantity", qty).
			WithDetail("equivalent", conv.EquivalentQuantity)
	}
	return baseQty, nil
}

// FromBase converts a base-unit quantity to a whole number of the given
// unit, flooring. A partial outer unit reports as zero until enough base
// units accumulate.
func (s *Service) FromBase(ctx context.Context, p *product.Product, unitID id.ID, baseQty types.Quantity) (types.Quantity, error) {
	if unitID == p.BaseUnitID {
		return baseQty, nil
	}

	conv, err := s.lookup(ctx, p.ID, unitID)
	if err != nil {
		return 0, err
	}

	return baseQty.WholeUnitsBy(conv.EquivalentQuantity), nil
}

// Lookup returns the conversion row for (product, unit), or a
// MISSING_CONVERSION error. The base unit has no row by definition.
func (s *Service) Lookup(ctx context.Context, productID, unitID id.ID) (*UnitConversion, error) {
	conv, err := s.lookup(ctx, productID, unitID)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *Service) lookup(ctx context.Context, productID, unitID id.ID) (UnitConversion, error) {
	conv, ok, loaded := s.cache.get(productID, unitID)
	if ok {
		return conv, nil
	}

	if !loaded {
		rows, err := s.repo.ListByProduct(ctx, productID)
		if err != nil {
			return UnitConversion{}, err
		}
		s.cache.put(productID, rows)

		for _, row := range rows {
			if row.UnitID == unitID {
				return row, nil
			}
		}
	}

	return UnitConversion{}, apperror.NewMissingConversion(productID, unitID)
}

// ListByProduct returns all conversion rows for a product.
func (s *Service) ListByProduct(ctx context.Context, productID id.ID) ([]UnitConversion, error) {
	return s.repo.ListByProduct(ctx, productID)
}

// Create validates and persists a conversion row, then invalidates the
// product's cached rows.
func (s *Service) Create(ctx context.Context, p *product.Product, c *UnitConversion) error {
	if err := c.Validate(ctx, p.BaseUnitID); err != nil {
		return err
	}

	existing, err := s.repo.ListByProduct(ctx, c.ProductID)
	if err != nil {
		return err
	}
	for _, row := range existing {
		if row.UnitID == c.UnitID {
			return apperror.NewDuplicate("conversion", "unit", c.UnitID.String())
		}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	s.cache.invalidate(c.ProductID)

	logger.Info(ctx, "conversion created",
		"product_id", c.ProductID,
		"unit_id", c.UnitID,
		"equivalent", c.EquivalentQuantity,
	)
	return nil
}

// Update modifies a conversion row and invalidates the cache.
func (s *Service) Update(ctx context.Context, p *product.Product, c *UnitConversion) error {
	if err := c.Validate(ctx, p.BaseUnitID); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.cache.invalidate(c.ProductID)
	return nil
}

// Delete removes a conversion row and invalidates the cache.
func (s *Service) Delete(ctx context.Context, conversionID id.ID) error {
	c, err := s.repo.GetByID(ctx, conversionID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, conversionID); err != nil {
		return err
	}
	s.cache.invalidate(c.ProductID)
	return nil
}
