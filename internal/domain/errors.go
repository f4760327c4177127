package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrInvalidMovementType    = errors.New("tipo de movimiento inválido")
	ErrProductNotFound        = errors.New("producto no encontrado")
	ErrWarehouseNotFound      = errors.New("bodega no encontrada")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")
	ErrTransferNotFound       = errors.New("traslado no encontrado")
	ErrConcurrencyConflict    = errors.New("conflicto de concurrencia")
)

// ErrWarehouseInactive bodega desactivada: no admite entradas ni reservas nuevas.
// errors.Is(err, ErrWarehouseNotFound) es verdadero.
var ErrWarehouseInactive = fmt.Errorf("bodega desactivada: %w", ErrWarehouseNotFound)

// StockShortageError identifica la ubicación (bodega × producto × variante) que no alcanza
// para la cantidad pedida. errors.Is(err, ErrInsufficientStock) es verdadero.
type StockShortageError struct {
	WarehouseID string
	ProductID   string
	VariantID   string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *StockShortageError) Error() string {
	loc := e.ProductID
	if e.VariantID != "" {
		loc += "/" + e.VariantID
	}
	if e.WarehouseID != "" {
		loc = e.WarehouseID + ":" + loc
	}
	return fmt.Sprintf("stock insuficiente en %s: solicitado %s, disponible %s",
		loc, e.Requested.String(), e.Available.String())
}

func (e *StockShortageError) Unwrap() error { return ErrInsufficientStock }

// AvailabilityError agrupa todas las líneas de un traslado sin disponibilidad.
type AvailabilityError struct {
	Shortages []StockShortageError
}

func (e *AvailabilityError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for i := range e.Shortages {
		parts = append(parts, e.Shortages[i].Error())
	}
	return strings.Join(parts, "; ")
}

func (e *AvailabilityError) Unwrap() error { return ErrInsufficientStock }

// TransitionError indica que el traslado no admite pasar de From a To.
type TransitionError struct {
	TransferID int64
	From       string
	To         string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("traslado %d: no se puede pasar de %s a %s", e.TransferID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStateTransition }
