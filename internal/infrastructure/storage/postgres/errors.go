package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"negoce/internal/core/apperror"
)

// Postgres SQLSTATE codes surfaced as typed errors.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// IsSerializationFailure reports whether err is a transaction conflict the
// caller may retry.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	return false
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return false
}

// MapConflict converts serialization failures into
// CONCURRENT_MODIFICATION so domain retry loops can recognize them.
func MapConflict(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if IsSerializationFailure(err) {
		return apperror.NewConcurrentModification(entity, id).WithCause(err)
	}
	return err
}
