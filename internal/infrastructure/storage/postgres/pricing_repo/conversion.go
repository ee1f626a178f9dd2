// Package pricing_repo provides PostgreSQL implementations for pricing
// repositories: unit conversions, price tiers and promotions.
package pricing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/domain/pricing/conversion"
	"negoce/internal/infrastructure/storage/postgres"
)

const conversionsTable = "unit_conversions"

var conversionColumns = []string{
	"id", "product_id", "unit_id", "equivalent_quantity", "override_price",
	"created_at", "updated_at",
}

// ConversionRepo implements conversion.Repository.
type ConversionRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewConversionRepo creates a new conversion repository.
func NewConversionRepo(txManager *postgres.TxManager) *ConversionRepo {
	return &ConversionRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a conversion row. The (product_id, unit_id) pair is unique.
func (r *ConversionRepo) Create(ctx context.Context, c *conversion.UnitConversion) error {
	q := r.builder.Insert(conversionsTable).
		Columns(conversionColumns...).
		Values(
			c.ID, c.ProductID, c.UnitID, c.EquivalentQuantity, c.OverridePrice,
			c.CreatedAt, c.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("conversion", "unit", c.UnitID.String())
		}
		return fmt.Errorf("insert conversion: %w", err)
	}

	return nil
}

// Update modifies a conversion row.
func (r *ConversionRepo) Update(ctx context.Context, c *conversion.UnitConversion) error {
	q := r.builder.Update(conversionsTable).
		Set("equivalent_quantity", c.EquivalentQuantity).
		Set("override_price", c.OverridePrice).
		Set("updated_at", c.UpdatedAt).
		Where(squirrel.Eq{"id": c.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update conversion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("conversion", c.ID)
	}

	return nil
}

// Delete removes a conversion row.
func (r *ConversionRepo) Delete(ctx context.Context, conversionID id.ID) error {
	q := r.builder.Delete(conversionsTable).Where(squirrel.Eq{"id": conversionID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete conversion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("conversion", conversionID)
	}

	return nil
}

// GetByID retrieves a conversion row.
func (r *ConversionRepo) GetByID(ctx context.Context, conversionID id.ID) (*conversion.UnitConversion, error) {
	q := r.builder.Select(conversionColumns...).
		From(conversionsTable).
		Where(squirrel.Eq{"id": conversionID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c conversion.UnitConversion
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("conversion", conversionID)
		}
		return nil, fmt.Errorf("get conversion: %w", err)
	}

	return &c, nil
}

// ListByProduct returns all conversion rows for a product.
func (r *ConversionRepo) ListByProduct(ctx context.Context, productID id.ID) ([]conversion.UnitConversion, error) {
	q := r.builder.Select(conversionColumns...).
		From(conversionsTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("equivalent_quantity")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var conversions []conversion.UnitConversion
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &conversions, sql, args...); err != nil {
		return nil, fmt.Errorf("select conversions: %w", err)
	}

	return conversions, nil
}

// Ensure interface compliance.
var _ conversion.Repository = (*ConversionRepo)(nil)
