package unit

import (
	"context"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/pkg/logger"
)

// Service provides business logic for the unit catalog.
type Service struct {
	repo Repository
}

// NewService creates a new unit service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new unit.
func (s *Service) Create(ctx context.Context, u *Unit) error {
	if err := u.Validate(ctx); err != nil {
		return err
	}

	exists, err := s.abbreviationExists(ctx, u.Abbreviation, u.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("unit", "abbreviation", u.Abbreviation)
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}

	logger.Info(ctx, "unit created", "id", u.ID, "abbreviation", u.Abbreviation)
	return nil
}

// Update modifies a unit. Units referenced by a product or a conversion
// are immutable.
func (s *Service) Update(ctx context.Context, u *Unit) error {
	if err := u.Validate(ctx); err != nil {
		return err
	}

	referenced, err := s.repo.IsReferenced(ctx, u.ID)
	if err != nil {
		return err
	}
	if referenced {
		return apperror.NewConflict("unit is referenced and cannot be modified").
			WithDetail("unit_id", u.ID)
	}

	exists, err := s.abbreviationExists(ctx, u.Abbreviation, u.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("unit", "abbreviation", u.Abbreviation)
	}

	return s.repo.Update(ctx, u)
}

// Delete removes an unreferenced unit.
func (s *Service) Delete(ctx context.Context, unitID id.ID) error {
	referenced, err := s.repo.IsReferenced(ctx, unitID)
	if err != nil {
		return err
	}
	if referenced {
		return apperror.NewConflict("unit is referenced and cannot be deleted").
			WithDetail("unit_id", unitID)
	}

	return s.repo.Delete(ctx, unitID)
}

// GetByID retrieves a unit.
func (s *Service) GetByID(ctx context.Context, unitID id.ID) (*Unit, error) {
	return s.repo.GetByID(ctx, unitID)
}

// List returns all units.
func (s *Service) List(ctx context.Context) ([]Unit, error) {
	return s.repo.List(ctx)
}

// abbreviationExists reports whether another unit already claims the
// abbreviation. Only a NotFound lookup means the abbreviation is free; any
// other storage failure propagates so the uniqueness guard is never skipped
// silently.
func (s *Service) abbreviationExists(ctx context.Context, abbreviation string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByAbbreviation(ctx, abbreviation)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
