package sales

import (
	"context"
	"time"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/core/tx"
	"negoce/internal/core/types"
	"negoce/internal/domain/catalog/product"
	"negoce/internal/domain/ledger"
	"negoce/internal/domain/pricing/conversion"
	"negoce/internal/domain/pricing/promotion"
	"negoce/internal/domain/pricing/tier"
	"negoce/pkg/logger"
)

// maxCheckoutRetries bounds whole-transaction retries on conflicts.
const maxCheckoutRetries = 3

// Service finalizes sales. Pricing runs first; then one transaction covers
// the sale insert, a ledger movement per line and the promotion usage
// increments. If any write fails, nothing is committed.
type Service struct {
	repo        Repository
	products    product.Repository
	conversions *conversion.Service
	tiers       *tier.Service
	promotions  *promotion.Service
	ledger      *ledger.Service
	txManager   tx.Manager
}

// NewService creates a new sales service.
func NewService(
	repo Repository,
	products product.Repository,
	conversions *conversion.Service,
	tiers *tier.Service,
	promotions *promotion.Service,
	ledgerService *ledger.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:        repo,
		products:    products,
		conversions: conversions,
		tiers:       tiers,
		promotions:  promotions,
		ledger:      ledgerService,
		txManager:   txManager,
	}
}

// LineRequest is one requested line item.
type LineRequest struct {
	ProductID id.ID          `json:"productId"`
	UnitID    id.ID          `json:"unitId"`
	Quantity  types.Quantity `json:"quantity"`

	// UnitPrice, when set, overrides engine price resolution for the line.
	UnitPrice *types.Money `json:"unitPrice,omitempty"`
}

// CheckoutRequest describes a sale to finalize.
type CheckoutRequest struct {
	CustomerID   *id.ID        `json:"customerId,omitempty"`
	Lines        []LineRequest `json:"lines"`
	Notes        string        `json:"notes,omitempty"`
	EnforceStock bool          `json:"enforceStock"`
}

// Checkout prices and finalizes a sale.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Sale, error) {
	if len(req.Lines) == 0 {
		return nil, apperror.NewValidation("sale requires at least one line")
	}

	now := time.Now().UTC()

	var lastErr error
	for attempt := 0; attempt < maxCheckoutRetries; attempt++ {
		sale, err := s.buildSale(ctx, req, now)
		if err != nil {
			return nil, err
		}

		lastErr = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.persist(ctx, req, sale)
		})
		if lastErr == nil {
			logger.Info(ctx, "sale finalized",
				"sale_id", sale.ID,
				"lines", len(sale.Lines),
				"total", sale.TotalAmount,
			)
			return sale, nil
		}
		if !apperror.IsConcurrentModification(lastErr) {
			return nil, lastErr
		}
		logger.Warn(ctx, "sale checkout conflict, retrying", "attempt", attempt+1)
	}

	return nil, lastErr
}

// buildSale prices each line: unit conversion, then caller override >
// conversion override price > tier resolution, then the single best
// promotion per line.
func (s *Service) buildSale(ctx context.Context, req CheckoutRequest, at time.Time) (*Sale, error) {
	sale := &Sale{
		ID:         id.New(),
		CustomerID: req.CustomerID,
		Notes:      req.Notes,
		CreatedAt:  at,
		Lines:      make([]SaleLine, 0, len(req.Lines)),
	}

	gross := types.ZeroMoney()
	discount := types.ZeroMoney()

	customerID := ""
	if req.CustomerID != nil {
		customerID = req.CustomerID.String()
	}

	for i, lr := range req.Lines {
		if !lr.Quantity.IsPositive() {
			return nil, apperror.NewInvalidQuantity("line quantity must be positive").
				WithDetail("line", i+1)
		}

		p, err := s.products.GetByID(ctx, lr.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, apperror.NewValidation("product is inactive").
				WithDetail("product_id", p.ID)
		}

		baseQty, err := s.conversions.ToBase(ctx, p, lr.UnitID, lr.Quantity)
		if err != nil {
			return nil, err
		}

		unitPrice, tierName, err := s.resolveLinePrice(ctx, p, lr)
		if err != nil {
			return nil, err
		}

		lineGross := unitPrice.Mul(lr.Quantity.Decimal())

		applied, err := s.promotions.BestFor(ctx, promotion.EvalInput{
			ProductID:  p.ID,
			CategoryID: p.CategoryID,
			At:         at,
			Quantity:   lr.Quantity,
			Amount:     lineGross,
			CustomerID: customerID,
		})
		if err != nil {
			return nil, err
		}

		line := SaleLine{
			ID:           id.New(),
			SaleID:       sale.ID,
			LineNo:       i + 1,
			ProductID:    p.ID,
			UnitID:       lr.UnitID,
			Quantity:     lr.Quantity,
			BaseQuantity: baseQty,
			UnitPrice:    unitPrice,
			TierName:     tierName,
			GrossAmount:  lineGross,
		}

		if applied != nil {
			promoID := applied.Promotion.ID
			line.PromotionID = &promoID
			line.DiscountAmount = applied.Discount
		} else {
			line.DiscountAmount = types.ZeroMoney()
		}
		line.LineTotal = line.GrossAmount.Sub(line.DiscountAmount)

		gross = gross.Add(line.GrossAmount)
		discount = discount.Add(line.DiscountAmount)
		sale.Lines = append(sale.Lines, line)
	}

	sale.GrossAmount = gross
	sale.DiscountAmount = discount
	sale.TotalAmount = gross.Sub(discount)

	return sale, nil
}

func (s *Service) resolveLinePrice(ctx context.Context, p *product.Product, lr LineRequest) (types.Money, string, error) {
	if lr.UnitPrice != nil {
		if lr.UnitPrice.IsNegative() {
			return types.ZeroMoney(), "", apperror.NewValidation("unit price cannot be negative")
		}
		return *lr.UnitPrice, tier.DefaultTierName, nil
	}

	// A conversion row may carry its own sale price for that unit.
	if lr.UnitID != p.BaseUnitID {
		conv, err := s.conversions.Lookup(ctx, p.ID, lr.UnitID)
		if err != nil {
			return types.ZeroMoney(), "", err
		}
		if conv.OverridePrice != nil {
			return *conv.OverridePrice, tier.DefaultTierName, nil
		}
	}

	res, err := s.tiers.ResolvePrice(ctx, p, lr.Quantity)
	if err != nil {
		return types.ZeroMoney(), "", err
	}
	return res.UnitPrice, res.TierName, nil
}

// persist runs inside one transaction: sale insert, ledger writes,
// promotion usage increments.
func (s *Service) persist(ctx context.Context, req CheckoutRequest, sale *Sale) error {
	if err := s.repo.Create(ctx, sale); err != nil {
		return err
	}

	saleID := sale.ID
	for i := range sale.Lines {
		line := &sale.Lines[i]

		if _, err := s.ledger.ApplyWithinTransaction(ctx, ledger.ApplyCommand{
			ProductID:     line.ProductID,
			Type:          ledger.TypeSale,
			BaseQuantity:  line.BaseQuantity.Neg(),
			UnitID:        line.UnitID,
			ReferenceType: ledger.ReferenceSale,
			ReferenceID:   &saleID,
			EnforceStock:  req.EnforceStock,
		}); err != nil {
			return err
		}

		if line.PromotionID != nil {
			if err := s.promotions.RecordUse(ctx, *line.PromotionID, req.CustomerID, saleID); err != nil {
				return err
			}
		}
	}

	return nil
}

// GetByID retrieves a finalized sale with lines.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}
