package pricing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/domain/pricing/tier"
	"negoce/internal/infrastructure/storage/postgres"
)

const tiersTable = "price_tiers"

var tierColumns = []string{
	"id", "product_id", "tier_name", "min_quantity", "max_quantity",
	"unit_price", "created_at", "updated_at",
}

// TierRepo implements tier.Repository.
type TierRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewTierRepo creates a new tier repository.
func NewTierRepo(txManager *postgres.TxManager) *TierRepo {
	return &TierRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a tier.
func (r *TierRepo) Create(ctx context.Context, t *tier.PriceTier) error {
	q := r.builder.Insert(tiersTable).
		Columns(tierColumns...).
		Values(
			t.ID, t.ProductID, t.TierName, t.MinQuantity, t.MaxQuantity,
			t.UnitPrice, t.CreatedAt, t.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert tier: %w", err)
	}

	return nil
}

// Update modifies a tier.
func (r *TierRepo) Update(ctx context.Context, t *tier.PriceTier) error {
	q := r.builder.Update(tiersTable).
		Set("tier_name", t.TierName).
		Set("min_quantity", t.MinQuantity).
		Set("max_quantity", t.MaxQuantity).
		Set("unit_price", t.UnitPrice).
		Set("updated_at", t.UpdatedAt).
		Where(squirrel.Eq{"id": t.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("tier", t.ID)
	}

	return nil
}

// Delete removes a tier.
func (r *TierRepo) Delete(ctx context.Context, tierID id.ID) error {
	q := r.builder.Delete(tiersTable).Where(squirrel.Eq{"id": tierID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("tier", tierID)
	}

	return nil
}

// GetByID retrieves a tier.
func (r *TierRepo) GetByID(ctx context.Context, tierID id.ID) (*tier.PriceTier, error) {
	q := r.builder.Select(tierColumns...).
		From(tiersTable).
		Where(squirrel.Eq{"id": tierID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t tier.PriceTier
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("tier", tierID)
		}
		return nil, fmt.Errorf("get tier: %w", err)
	}

	return &t, nil
}

// ListByProduct returns all tiers for a product ordered by min_quantity.
func (r *TierRepo) ListByProduct(ctx context.Context, productID id.ID) ([]tier.PriceTier, error) {
	q := r.builder.Select(tierColumns...).
		From(tiersTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("min_quantity")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var tiers []tier.PriceTier
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &tiers, sql, args...); err != nil {
		return nil, fmt.Errorf("select tiers: %w", err)
	}

	return tiers, nil
}

// Ensure interface compliance.
var _ tier.Repository = (*TierRepo)(nil)
