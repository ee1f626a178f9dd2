package pricing_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/domain/pricing/promotion"
	"negoce/internal/infrastructure/storage/postgres"
)

const (
	promotionsTable    = "promotions"
	promotionUsesTable = "promotion_uses"
)

var promotionColumns = []string{
	"id", "name", "type", "start_date", "end_date",
	"min_quantity", "min_amount",
	"discount_percentage", "discount_amount", "buy_quantity", "get_quantity",
	"max_uses_per_customer", "max_total_uses", "current_uses",
	"applicable_products", "applicable_categories", "condition",
	"is_active", "created_at", "updated_at",
}

// PromotionRepo implements promotion.Repository.
type PromotionRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPromotionRepo creates a new promotion repository.
func NewPromotionRepo(txManager *postgres.TxManager) *PromotionRepo {
	return &PromotionRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a promotion.
func (r *PromotionRepo) Create(ctx context.Context, p *promotion.Promotion) error {
	q := r.builder.Insert(promotionsTable).
		Columns(promotionColumns...).
		Values(
			p.ID, p.Name, p.Type, p.StartDate, p.EndDate,
			p.MinQuantity, p.MinAmount,
			p.DiscountPercentage, p.DiscountAmount, p.BuyQuantity, p.GetQuantity,
			p.MaxUsesPerCustomer, p.MaxTotalUses, p.CurrentUses,
			p.ApplicableProducts, p.ApplicableCategories, p.Condition,
			p.IsActive, p.CreatedAt, p.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert promotion: %w", err)
	}

	return nil
}

// Update modifies a promotion's configuration. current_uses is excluded;
// only RecordUse writes it.
func (r *PromotionRepo) Update(ctx context.Context, p *promotion.Promotion) error {
	q := r.builder.Update(promotionsTable).
		Set("name", p.Name).
		Set("type", p.Type).
		Set("start_date", p.StartDate).
		Set("end_date", p.EndDate).
		Set("min_quantity", p.MinQuantity).
		Set("min_amount", p.MinAmount).
		Set("discount_percentage", p.DiscountPercentage).
		Set("discount_amount", p.DiscountAmount).
		Set("buy_quantity", p.BuyQuantity).
		Set("get_quantity", p.GetQuantity).
		Set("max_uses_per_customer", p.MaxUsesPerCustomer).
		Set("max_total_uses", p.MaxTotalUses).
		Set("applicable_products", p.ApplicableProducts).
		Set("applicable_categories", p.ApplicableCategories).
		Set("condition", p.Condition).
		Set("is_active", p.IsActive).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("promotion", p.ID)
	}

	return nil
}

// Delete removes a promotion; its usage rows cascade.
func (r *PromotionRepo) Delete(ctx context.Context, promotionID id.ID) error {
	q := r.builder.Delete(promotionsTable).Where(squirrel.Eq{"id": promotionID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("promotion", promotionID)
	}

	return nil
}

// GetByID retrieves a promotion.
func (r *PromotionRepo) GetByID(ctx context.Context, promotionID id.ID) (*promotion.Promotion, error) {
	q := r.builder.Select(promotionColumns...).
		From(promotionsTable).
		Where(squirrel.Eq{"id": promotionID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p promotion.Promotion
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("promotion", promotionID)
		}
		return nil, fmt.Errorf("get promotion: %w", err)
	}

	return &p, nil
}

// List returns all promotions ordered by start_date descending.
func (r *PromotionRepo) List(ctx context.Context) ([]promotion.Promotion, error) {
	q := r.builder.Select(promotionColumns...).
		From(promotionsTable).
		OrderBy("start_date DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var promotions []promotion.Promotion
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &promotions, sql, args...); err != nil {
		return nil, fmt.Errorf("select promotions: %w", err)
	}

	return promotions, nil
}

// ListActive returns active promotions whose period covers at. The end date
// comparison matches Promotion.WithinPeriod: end_date is inclusive to the
// end of its calendar day.
func (r *PromotionRepo) ListActive(ctx context.Context, at time.Time) ([]promotion.Promotion, error) {
	q := r.builder.Select(promotionColumns...).
		From(promotionsTable).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.LtOrEq{"start_date": at}).
		Where(squirrel.Gt{"end_date": at.Add(-24 * time.Hour)}).
		OrderBy("start_date")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var promotions []promotion.Promotion
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &promotions, sql, args...); err != nil {
		return nil, fmt.Errorf("select active promotions: %w", err)
	}

	// The SQL window is a coarse filter; WithinPeriod is authoritative.
	filtered := promotions[:0]
	for _, p := range promotions {
		if p.WithinPeriod(at) {
			filtered = append(filtered, p)
		}
	}

	return filtered, nil
}

// CountUses returns current usage counts for limit checks.
func (r *PromotionRepo) CountUses(ctx context.Context, promotionID id.ID, customerID *id.ID) (promotion.UsageCounts, error) {
	var counts promotion.UsageCounts
	querier := r.txManager.GetQuerier(ctx)

	err := querier.QueryRow(ctx,
		`SELECT current_uses FROM promotions WHERE id = $1`, promotionID,
	).Scan(&counts.TotalUses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return counts, apperror.NewNotFound("promotion", promotionID)
		}
		return counts, fmt.Errorf("count promotion uses: %w", err)
	}

	if customerID != nil {
		err = querier.QueryRow(ctx,
			`SELECT COUNT(*) FROM promotion_uses WHERE promotion_id = $1 AND customer_id = $2`,
			promotionID, *customerID,
		).Scan(&counts.CustomerUses)
		if err != nil {
			return counts, fmt.Errorf("count customer uses: %w", err)
		}
	}

	return counts, nil
}

// RecordUse increments current_uses guarded by max_total_uses and appends a
// usage row. Runs inside the sale's transaction; if the guard matches no row
// the limit was reached concurrently and the sale must fail.
func (r *PromotionRepo) RecordUse(ctx context.Context, promotionID id.ID, customerID *id.ID, saleID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	tag, err := querier.Exec(ctx, `
		UPDATE promotions
		SET current_uses = current_uses + 1
		WHERE id = $1
		  AND (max_total_uses IS NULL OR current_uses < max_total_uses)
	`, promotionID)
	if err != nil {
		return postgres.MapConflict(fmt.Errorf("increment promotion uses: %w", err), "promotion", promotionID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewPromotionExhausted(promotionID)
	}

	_, err = querier.Exec(ctx, `
		INSERT INTO promotion_uses (id, promotion_id, customer_id, sale_id, used_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id.New(), promotionID, customerID, saleID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert promotion use: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ promotion.Repository = (*PromotionRepo)(nil)
