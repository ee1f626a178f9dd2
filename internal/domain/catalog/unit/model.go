// Package unit provides the measurement unit catalog.
// Units are referenced by products (base unit) and by unit conversions.
package unit

import (
	"context"
	"time"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
)

// Unit represents a measurement unit (bouteille, casier, carton, litre...).
type Unit struct {
	ID           id.ID     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Abbreviation string    `db:"abbreviation" json:"abbreviation"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a new Unit with a generated id.
func New(name, abbreviation string) *Unit {
	now := time.Now().UTC()
	return &Unit{
		ID:           id.New(),
		Name:         name,
		Abbreviation: abbreviation,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks required fields.
func (u *Unit) Validate(ctx context.Context) error {
	if u.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if u.Abbreviation == "" {
		return apperror.NewValidation("abbreviation is required").
			WithDetail("field", "abbreviation")
	}
	return nil
}
