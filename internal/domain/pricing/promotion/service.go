package promotion

import (
	"context"
	"time"

	"negoce/internal/core/id"
	"negoce/pkg/logger"
)

// Service provides business logic for promotion management and evaluation.
type Service struct {
	repo Repository
}

// NewService creates a new promotion service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the configuration (including the optional condition
// expression) and persists the promotion.
func (s *Service) Create(ctx context.Context, p *Promotion) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}

	logger.Info(ctx, "promotion created", "id", p.ID, "name", p.Name, "type", p.Type)
	return nil
}

// Update validates and modifies a promotion.
func (s *Service) Update(ctx context.Context, p *Promotion) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a promotion.
func (s *Service) Delete(ctx context.Context, promotionID id.ID) error {
	return s.repo.Delete(ctx, promotionID)
}

// GetByID retrieves a promotion.
func (s *Service) GetByID(ctx context.Context, promotionID id.ID) (*Promotion, error) {
	return s.repo.GetByID(ctx, promotionID)
}

// List returns all promotions.
func (s *Service) List(ctx context.Context) ([]Promotion, error) {
	return s.repo.List(ctx)
}

// BestFor loads active promotions and picks the single best discount for
// the input, wiring usage counts from storage.
func (s *Service) BestFor(ctx context.Context, in EvalInput) (*Applied, error) {
	candidates, err := s.repo.ListActive(ctx, in.At)
	if err != nil {
		return nil, err
	}

	var customerID *id.ID
	if in.CustomerID != "" {
		if parsed, err := id.Parse(in.CustomerID); err == nil {
			customerID = &parsed
		}
	}

	if in.Usage == nil {
		in.Usage = func(promotionID id.ID) (UsageCounts, error) {
			return s.repo.CountUses(ctx, promotionID, customerID)
		}
	}

	return Best(candidates, in)
}

// RecordUse registers one application of a promotion within the current
// transaction.
func (s *Service) RecordUse(ctx context.Context, promotionID id.ID, customerID *id.ID, saleID id.ID) error {
	return s.repo.RecordUse(ctx, promotionID, customerID, saleID)
}

// ListActive returns active promotions covering at.
func (s *Service) ListActive(ctx context.Context, at time.Time) ([]Promotion, error) {
	return s.repo.ListActive(ctx, at)
}
