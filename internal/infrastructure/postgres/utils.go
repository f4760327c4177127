package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Códigos SQLSTATE que el adaptador distingue.
const (
	sqlStateInvalidText          = "22P02"
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation: choque con un índice único (p. ej. número de traslado repetido).
func isUniqueViolation(err error) bool {
	return pgCode(err) == sqlStateUniqueViolation
}

// isInvalidText: el valor no se pudo convertir al tipo de la columna (p. ej. un id que no es UUID).
func isInvalidText(err error) bool {
	return pgCode(err) == sqlStateInvalidText
}

// wrapErr envuelve el error de la operación; un id mal formado llega al caso de uso como ErrInvalidInput.
func wrapErr(op string, err error) error {
	if isInvalidText(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isRetryable: la tx perdió contra otra y puede repetirse completa.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return true
	}
	return false
}

// nullString "" → NULL (columnas UUID opcionales).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// derefString NULL → "".
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
