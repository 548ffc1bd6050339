package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Outcome errors shared by every service. Handlers map them to status codes.
var (
	ErrNotFound       = errors.New("not found")
	ErrStatusConflict = errors.New("status changed by another request")
	ErrNotReady       = errors.New("not ready for this move")
	ErrAlreadySettled = errors.New("order is already settled")
	ErrNotSettled     = errors.New("order has not been settled")
)

// ValidationError is a request that was rejected before any write.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalid(msg string) *ValidationError { return &ValidationError{msg: msg} }

// PersistenceError wraps a database failure that is not one of the expected
// outcomes above.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

func persist(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// notFoundOr maps pgx.ErrNoRows to ErrNotFound and wraps anything else.
func notFoundOr(op string, err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return persist(op, err)
}

// conflictOr maps the zero-row result of a compare-and-set to
// ErrStatusConflict and wraps anything else.
func conflictOr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrStatusConflict)
	}
	return persist(op, err)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	return false
}

// readTx runs fn in a transaction that is always rolled back.
func readTx(ctx context.Context, pool TxBeginner, fn func(db database.DBTX) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	return fn(tx)
}
