package pkg

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html

// IsUniqueViolationError checks if the error is a unique violation error
func IsUniqueViolationError(err error) bool {
	var pqErr *pgconn.PgError
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// IsDataExceptionError checks if postgres rejected a value itself (class 22),
// e.g. a NUL byte in a text column. Retrying such a write never succeeds.
func IsDataExceptionError(err error) bool {
	var pqErr *pgconn.PgError
	if errors.As(err, &pqErr) {
		return strings.HasPrefix(pqErr.Code, "22")
	}
	return false
}
