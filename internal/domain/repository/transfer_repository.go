package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransferFilter criterios del listado de traslados.
type TransferFilter struct {
	Status          entity.TransferStatus
	FromWarehouseID string
	ToWarehouseID   string
	Limit           int
	Offset          int
}

// TransferRepository puerto de persistencia del agregado StockTransfer (cabecera + líneas).
type TransferRepository interface {
	// Create inserta cabecera y líneas; asigna IDs y Version=1.
	// Devuelve domain.ErrDuplicate si TransferNumber ya existe.
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.StockTransfer, error)
	// GetForUpdate bloquea la cabecera; nil, nil si no existe.
	GetForUpdate(ctx context.Context, id int64) (*entity.StockTransfer, error)
	// Update guarda cabecera y líneas con compare-and-swap sobre Version (la incrementa).
	// Devuelve domain.ErrConcurrencyConflict si la versión cambió.
	Update(ctx context.Context, transfer *entity.StockTransfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.StockTransfer, error)
}
