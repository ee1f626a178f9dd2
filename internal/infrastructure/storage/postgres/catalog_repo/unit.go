// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/domain/catalog/unit"
	"negoce/internal/infrastructure/storage/postgres"
)

const unitsTable = "units"

var unitColumns = []string{"id", "name", "abbreviation", "created_at", "updated_at"}

// UnitRepo implements unit.Repository.
type UnitRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewUnitRepo creates a new unit repository.
func NewUnitRepo(txManager *postgres.TxManager) *UnitRepo {
	return &UnitRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a unit.
func (r *UnitRepo) Create(ctx context.Context, u *unit.Unit) error {
	q := r.builder.Insert(unitsTable).
		Columns(unitColumns...).
		Values(u.ID, u.Name, u.Abbreviation, u.CreatedAt, u.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("unit", "abbreviation", u.Abbreviation)
		}
		return fmt.Errorf("insert unit: %w", err)
	}

	return nil
}

// Update modifies a unit.
func (r *UnitRepo) Update(ctx context.Context, u *unit.Unit) error {
	q := r.builder.Update(unitsTable).
		Set("name", u.Name).
		Set("abbreviation", u.Abbreviation).
		Set("updated_at", u.UpdatedAt).
		Where(squirrel.Eq{"id": u.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("unit", u.ID)
	}

	return nil
}

// Delete removes a unit.
func (r *UnitRepo) Delete(ctx context.Context, unitID id.ID) error {
	q := r.builder.Delete(unitsTable).Where(squirrel.Eq{"id": unitID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("unit", unitID)
	}

	return nil
}

// GetByID retrieves a unit.
func (r *UnitRepo) GetByID(ctx context.Context, unitID id.ID) (*unit.Unit, error) {
	q := r.builder.Select(unitColumns...).
		From(unitsTable).
		Where(squirrel.Eq{"id": unitID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u unit.Unit
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("unit", unitID)
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}

	return &u, nil
}

// FindByAbbreviation retrieves a unit by abbreviation.
func (r *UnitRepo) FindByAbbreviation(ctx context.Context, abbreviation string) (*unit.Unit, error) {
	q := r.builder.Select(unitColumns...).
		From(unitsTable).
		Where(squirrel.Eq{"abbreviation": abbreviation}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u unit.Unit
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("unit", abbreviation)
		}
		return nil, fmt.Errorf("find unit: %w", err)
	}

	return &u, nil
}

// List returns all units ordered by name.
func (r *UnitRepo) List(ctx context.Context) ([]unit.Unit, error) {
	q := r.builder.Select(unitColumns...).
		From(unitsTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var units []unit.Unit
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &units, sql, args...); err != nil {
		return nil, fmt.Errorf("select units: %w", err)
	}

	return units, nil
}

// IsReferenced reports whether the unit backs a product's base unit or a
// conversion row.
func (r *UnitRepo) IsReferenced(ctx context.Context, unitID id.ID) (bool, error) {
	sql := `
		SELECT EXISTS (SELECT 1 FROM products WHERE base_unit_id = $1)
		    OR EXISTS (SELECT 1 FROM unit_conversions WHERE unit_id = $1)
	`

	var referenced bool
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, unitID).Scan(&referenced)
	if err != nil {
		return false, fmt.Errorf("check unit references: %w", err)
	}

	return referenced, nil
}

// Ensure interface compliance.
var _ unit.Repository = (*UnitRepo)(nil)
