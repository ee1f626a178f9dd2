package ledger

import (
	"context"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/core/tx"
	"negoce/internal/core/types"
	"negoce/internal/domain/catalog/product"
	"negoce/internal/domain/pricing/conversion"
	"negoce/pkg/logger"
)

// maxApplyRetries bounds retries on transaction conflicts before the
// failure surfaces to the caller as CONCURRENT_MODIFICATION.
const maxApplyRetries = 3

// Service applies stock movements. All derived operations (purchase, sale,
// outflow, inventory adjustment) funnel through Apply after unit
// conversion; nothing else changes stock.
type Service struct {
	repo        Repository
	conversions *conversion.Service
	products    product.Repository
	txManager   tx.Manager
}

// NewService creates a new ledger service.
func NewService(repo Repository, conversions *conversion.Service, products product.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:        repo,
		conversions: conversions,
		products:    products,
		txManager:   txManager,
	}
}

// ApplyCommand describes one stock-affecting event in base units.
type ApplyCommand struct {
	ProductID id.ID
	Type      MovementType

	// BaseQuantity is the signed delta in base units.
	BaseQuantity types.Quantity

	// UnitID is the unit the event was originally expressed in.
	UnitID id.ID

	ReferenceType string
	ReferenceID   *id.ID
	Notes         string

	// EnforceStock rejects the movement with INSUFFICIENT_STOCK when a
	// negative delta would drive stock below zero. Off by default:
	// back-orders are legitimate, the floor is the caller's policy.
	EnforceStock bool
}

// Apply records a movement and increments the product's stock atomically.
// Serialization conflicts are retried a bounded number of times.
func (s *Service) Apply(ctx context.Context, cmd ApplyCommand) (*StockMovement, error) {
	if cmd.BaseQuantity.IsZero() {
		return nil, apperror.NewInvalidQuantity("zero-delta movement must not be recorded").
			WithDetail("product_id", cmd.ProductID)
	}

	var movement *StockMovement
	var lastErr error

	for attempt := 0; attempt < maxApplyRetries; attempt++ {
		lastErr = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			m, err := s.ApplyWithinTransaction(ctx, cmd)
			if err != nil {
				return err
			}
			movement = m
			return nil
		})

		if lastErr == nil {
			logger.Info(ctx, "stock movement applied",
				"product_id", cmd.ProductID,
				"movement_type", cmd.Type,
				"quantity", cmd.BaseQuantity,
				"reference_type", cmd.ReferenceType,
			)
			return movement, nil
		}

		if !apperror.IsConcurrentModification(lastErr) {
			return nil, lastErr
		}
		logger.Warn(ctx, "stock movement conflict, retrying",
			"product_id", cmd.ProductID,
			"attempt", attempt+1,
		)
	}

	return nil, lastErr
}

// ApplyWithinTransaction records a movement inside the caller's
// transaction. The caller owns commit, rollback and conflict retry; used by
// flows bundling several writes into one unit of work (sale checkout).
func (s *Service) ApplyWithinTransaction(ctx context.Context, cmd ApplyCommand) (*StockMovement, error) {
	if cmd.BaseQuantity.IsZero() {
		return nil, apperror.NewInvalidQuantity("zero-delta movement must not be recorded").
			WithDetail("product_id", cmd.ProductID)
	}

	if cmd.EnforceStock && cmd.BaseQuantity.IsNegative() {
		available, err := s.repo.GetStockForUpdate(ctx, cmd.ProductID)
		if err != nil {
			return nil, err
		}
		if available+cmd.BaseQuantity < 0 {
			return nil, apperror.NewInsufficientStock(
				cmd.ProductID.String(),
				cmd.BaseQuantity.Neg().Float64(),
				available.Float64(),
			)
		}
	}

	movement := NewMovement(cmd.ProductID, cmd.Type, cmd.BaseQuantity, cmd.UnitID, cmd.ReferenceType, cmd.ReferenceID, cmd.Notes)
	if _, err := s.repo.ApplyMovement(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// PurchaseInput describes goods received from a supplier.
type PurchaseInput struct {
	ProductID   id.ID
	UnitID      id.ID
	Quantity    types.Quantity
	ReferenceID *id.ID
	Notes       string
}

// RecordPurchase converts the received quantity to base units and applies a
// positive movement with reference "achat".
func (s *Service) RecordPurchase(ctx context.Context, in PurchaseInput) (*StockMovement, error) {
	p, baseQty, err := s.toBase(ctx, in.ProductID, in.UnitID, in.Quantity)
	if err != nil {
		return nil, err
	}

	return s.Apply(ctx, ApplyCommand{
		ProductID:     p.ID,
		Type:          TypePurchase,
		BaseQuantity:  baseQty,
		UnitID:        in.UnitID,
		ReferenceType: ReferencePurchase,
		ReferenceID:   in.ReferenceID,
		Notes:         in.Notes,
	})
}

// SaleInput describes one sold line item.
type SaleInput struct {
	ProductID    id.ID
	UnitID       id.ID
	Quantity     types.Quantity
	ReferenceID  *id.ID
	Notes        string
	EnforceStock bool
}

// RecordSale converts the sold quantity to base units and applies a
// negative movement with reference "vente". Called once per line item of a
// finalized sale.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (*StockMovement, error) {
	p, baseQty, err := s.toBase(ctx, in.ProductID, in.UnitID, in.Quantity)
	if err != nil {
		return nil, err
	}

	return s.Apply(ctx, ApplyCommand{
		ProductID:     p.ID,
		Type:          TypeSale,
		BaseQuantity:  baseQty.Neg(),
		UnitID:        in.UnitID,
		ReferenceType: ReferenceSale,
		ReferenceID:   in.ReferenceID,
		Notes:         in.Notes,
		EnforceStock:  in.EnforceStock,
	})
}

// OutflowInput describes a manual stock removal.
type OutflowInput struct {
	ProductID    id.ID
	UnitID       id.ID
	Quantity     types.Quantity
	Reason       string
	Notes        string
	EnforceStock bool
}

// RecordOutflow removes stock for a reason (casse, don, vol...). The reason
// becomes the movement's reference type.
func (s *Service) RecordOutflow(ctx context.Context, in OutflowInput) (*StockMovement, error) {
	if !IsOutflowReason(in.Reason) {
		return nil, apperror.NewValidation("unknown outflow reason").
			WithDetail("reason", in.Reason)
	}

	p, baseQty, err := s.toBase(ctx, in.ProductID, in.UnitID, in.Quantity)
	if err != nil {
		return nil, err
	}

	return s.Apply(ctx, ApplyCommand{
		ProductID:     p.ID,
		Type:          TypeAdjustment,
		BaseQuantity:  baseQty.Neg(),
		UnitID:        in.UnitID,
		ReferenceType: in.Reason,
		Notes:         in.Notes,
		EnforceStock:  in.EnforceStock,
	})
}

// AdjustInput describes a physical inventory count.
type AdjustInput struct {
	ProductID id.ID
	UnitID    id.ID

	// CountedQuantity is the physically counted quantity in UnitID. Zero is
	// a legitimate count.
	CountedQuantity types.Quantity
	Notes           string
}

// AdjustResult reports the outcome of an inventory count.
type AdjustResult struct {
	ProductID   id.ID           `json:"productId"`
	CountedBase types.Quantity  `json:"countedBase"`
	Difference  types.Quantity  `json:"difference"`
	Adjusted    bool            `json:"adjusted"`
	Movement    *StockMovement  `json:"movement,omitempty"`
	NewStock    types.Quantity  `json:"newStock"`
}

// Adjust reconciles stock with a physical count. A zero difference writes
// no ledger row; otherwise a single adjustment movement carries the signed
// difference with reference "inventaire". The read, the comparison and the
// write happen under one product row lock.
func (s *Service) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if in.CountedQuantity.IsNegative() {
		return nil, apperror.NewInvalidQuantity("counted quantity cannot be negative").
			WithDetail("quantity", in.CountedQuantity)
	}

	p, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	countedBase, err := s.conversions.ToBase(ctx, p, in.UnitID, in.CountedQuantity)
	if err != nil {
		return nil, err
	}

	result := &AdjustResult{ProductID: p.ID, CountedBase: countedBase}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetStockForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}

		diff := countedBase - current
		result.Difference = diff

		if diff.IsZero() {
			result.NewStock = current
			return nil
		}

		movement := NewMovement(p.ID, TypeAdjustment, diff, in.UnitID, ReferenceInventory, nil, in.Notes)
		newStock, err := s.repo.ApplyMovement(ctx, movement)
		if err != nil {
			return err
		}

		result.Adjusted = true
		result.Movement = movement
		result.NewStock = newStock
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Adjusted {
		logger.Info(ctx, "inventory adjustment recorded",
			"product_id", p.ID,
			"difference", result.Difference,
		)
	} else {
		logger.Info(ctx, "inventory count matches stock, no adjustment",
			"product_id", p.ID,
		)
	}

	return result, nil
}

// ListMovements returns the filtered movement history, newest first.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]StockMovement, error) {
	return s.repo.List(ctx, filter)
}

// StockInUnit reports current stock converted to an arbitrary unit,
// flooring to whole units. Callers always pull the authoritative total;
// converted values are never cached across requests.
func (s *Service) StockInUnit(ctx context.Context, productID, unitID id.ID) (types.Quantity, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return s.conversions.FromBase(ctx, p, unitID, p.StockQuantity)
}

// VerifyConsistency checks that a product's stock equals the signed sum of
// its ledger entries.
func (s *Service) VerifyConsistency(ctx context.Context, productID id.ID) (bool, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}

	sum, err := s.repo.SumMovements(ctx, productID)
	if err != nil {
		return false, err
	}

	return sum == p.StockQuantity, nil
}

func (s *Service) toBase(ctx context.Context, productID, unitID id.ID, qty types.Quantity) (*product.Product, types.Quantity, error) {
	if !qty.IsPositive() {
		return nil, 0, apperror.NewInvalidQuantity("quantity must be positive").
			WithDetail("quantity", qty)
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, 0, err
	}

	baseQty, err := s.conversions.ToBase(ctx, p, unitID, qty)
	if err != nil {
		return nil, 0, err
	}

	return p, baseQty, nil
}
