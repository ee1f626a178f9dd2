// Package sales_repo provides the PostgreSQL implementation of sale
// persistence.
package sales_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/domain/sales"
	"negoce/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "sales"
	saleLinesTable = "sale_lines"
)

var saleColumns = []string{
	"id", "customer_id", "gross_amount", "discount_amount", "total_amount",
	"notes", "created_at",
}

var saleLineColumns = []string{
	"id", "sale_id", "line_no", "product_id", "unit_id", "quantity",
	"base_quantity", "unit_price", "tier_name", "promotion_id",
	"gross_amount", "discount_amount", "line_total",
}

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the sale and its lines within the caller's transaction.
func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	querier := r.txManager.GetQuerier(ctx)

	q := r.builder.Insert(salesTable).
		Columns(saleColumns...).
		Values(
			sale.ID, sale.CustomerID, sale.GrossAmount, sale.DiscountAmount,
			sale.TotalAmount, sale.Notes, sale.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build sale insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	if len(sale.Lines) == 0 {
		return nil
	}

	lq := r.builder.Insert(saleLinesTable).Columns(saleLineColumns...)
	for _, line := range sale.Lines {
		lq = lq.Values(
			line.ID, line.SaleID, line.LineNo, line.ProductID, line.UnitID,
			line.Quantity, line.BaseQuantity, line.UnitPrice, line.TierName,
			line.PromotionID, line.GrossAmount, line.DiscountAmount, line.LineTotal,
		)
	}

	sql, args, err = lq.ToSql()
	if err != nil {
		return fmt.Errorf("build lines insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale lines: %w", err)
	}

	return nil
}

// GetByID retrieves a sale with its lines.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	querier := r.txManager.GetQuerier(ctx)

	q := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sale sales.Sale
	if err := pgxscan.Get(ctx, querier, &sale, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID)
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	lq := r.builder.Select(saleLineColumns...).
		From(saleLinesTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("line_no")

	sql, args, err = lq.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &sale.Lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select sale lines: %w", err)
	}

	return &sale, nil
}

// Ensure interface compliance.
var _ sales.Repository = (*SaleRepo)(nil)
