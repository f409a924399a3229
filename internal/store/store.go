// Package store holds the PostgreSQL repositories behind the workers.
package store

import (
	"context"
	"errors"

	apperrors "phoneplan-workers/internal/common/errors"

	"github.com/lib/pq"
)

// PostgreSQL integrity constraint violations.
const (
	pqForeignKeyViolation = pq.ErrorCode("23503")
	pqUniqueViolation     = pq.ErrorCode("23505")
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicatePhone   = errors.New("phone number already subscribed")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrInvalidReference = errors.New("user or plan does not exist")
	ErrInUse            = errors.New("referenced by existing rows")
)

// queryError converts a driver error into a retryable StandardError.
func queryError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(op)
	}
	return apperrors.NewQueryExecutionFailedError(op, err)
}

// rowsAffected maps an UPDATE/DELETE result with no rows to ErrNotFound.
func rowsAffected(op string, n int64, err error) error {
	if err != nil {
		return queryError(op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isViolation reports whether err is a PostgreSQL error with the given code.
func isViolation(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
