package unit

import (
	"context"

	"negoce/internal/core/id"
)

// Repository defines storage operations for the unit catalog.
type Repository interface {
	Create(ctx context.Context, u *Unit) error
	Update(ctx context.Context, u *Unit) error
	Delete(ctx context.Context, unitID id.ID) error

	GetByID(ctx context.Context, unitID id.ID) (*Unit, error)
	FindByAbbreviation(ctx context.Context, abbreviation string) (*Unit, error)
	List(ctx context.Context) ([]Unit, error)

	// IsReferenced reports whether the unit is used as a product base unit
	// or appears in a unit conversion. Referenced units are immutable.
	IsReferenced(ctx context.Context, unitID id.ID) (bool, error)
}
