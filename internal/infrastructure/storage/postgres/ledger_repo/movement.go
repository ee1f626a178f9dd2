// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger. The movement insert and the product stock increment happen in the
// same transaction, which keeps stock_quantity equal to the signed sum of
// the ledger at all times.
package ledger_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/core/types"
	"negoce/internal/domain/ledger"
	"negoce/internal/infrastructure/storage/postgres"
)

const movementsTable = "stock_movements"

var movementColumns = []string{
	"id", "product_id", "movement_type", "quantity", "unit_id",
	"reference_type", "reference_id", "notes", "created_at",
}

// MovementRepo implements ledger.Repository.
type MovementRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewMovementRepo creates a new movement repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ApplyMovement increments the product's stock by the movement's signed
// delta and appends the movement row. Both statements run on the caller's
// transaction; serialization conflicts surface as CONCURRENT_MODIFICATION
// so the domain retry loop can recognize them.
func (r *MovementRepo) ApplyMovement(ctx context.Context, m *ledger.StockMovement) (types.Quantity, error) {
	querier := r.txManager.GetQuerier(ctx)

	var newStock types.Quantity
	err := querier.QueryRow(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING stock_quantity
	`, m.Quantity, m.ProductID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFound("product", m.ProductID)
		}
		return 0, postgres.MapConflict(fmt.Errorf("increment stock: %w", err), "product", m.ProductID)
	}

	q := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(
			m.ID, m.ProductID, m.Type, m.Quantity, m.UnitID,
			m.ReferenceType, m.ReferenceID, m.Notes, m.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return 0, postgres.MapConflict(fmt.Errorf("insert movement: %w", err), "product", m.ProductID)
	}

	return newStock, nil
}

// GetStockForUpdate reads a product's stock with a row lock.
func (r *MovementRepo) GetStockForUpdate(ctx context.Context, productID id.ID) (types.Quantity, error) {
	var stock types.Quantity
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		`SELECT stock_quantity FROM products WHERE id = $1 FOR UPDATE`,
		productID,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFound("product", productID)
		}
		return 0, postgres.MapConflict(fmt.Errorf("lock product stock: %w", err), "product", productID)
	}

	return stock, nil
}

// SumMovements returns the signed sum of all movements for a product.
func (r *MovementRepo) SumMovements(ctx context.Context, productID id.ID) (types.Quantity, error) {
	var sum types.Quantity
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE product_id = $1`,
		productID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}

	return sum, nil
}

// List returns movements matching the filter, newest first.
func (r *MovementRepo) List(ctx context.Context, filter ledger.MovementFilter) ([]ledger.StockMovement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.MovementType != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.MovementType})
	}
	if filter.ReferenceType != nil {
		q = q.Where(squirrel.Eq{"reference_type": *filter.ReferenceType})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.StockMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*MovementRepo)(nil)
