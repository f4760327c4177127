package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository puerto de persistencia para Product (solo lo que usa el núcleo de inventario).
type ProductRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto; nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateStockQuantity actualiza el contador legado (usado por el ledger).
	UpdateStockQuantity(ctx context.Context, productID string, qty decimal.Decimal) error
}
