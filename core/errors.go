package core

import (
	"errors"

	"github.com/jackc/pgconn"
)

var (
	ErrNotFound = errors.New("core: record not found")

	// ErrValidation marks malformed or out-of-range caller input. Wrap it
	// with a specific message: errors.WithMessage(core.ErrValidation, "...").
	ErrValidation = errors.New("core: invalid request")

	// ErrInsufficientStock and ErrInsufficientUnits are business rule
	// violations, not faults. Operations returning them leave no state change.
	ErrInsufficientStock = errors.New("core: insufficient stock")
	ErrInsufficientUnits = errors.New("core: insufficient inventory units")

	// ErrConflict is returned when a transaction lost a serialization race
	// and the bounded retry budget is exhausted.
	ErrConflict = errors.New("core: conflicting concurrent update")
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// Retryable reports whether err is a transient conflict that may succeed on a
// fresh transaction.
func Retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}
