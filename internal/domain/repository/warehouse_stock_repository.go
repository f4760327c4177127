package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LowStockItem proyección bajo su punto de reorden, con datos del producto para mostrar.
type LowStockItem struct {
	Stock       entity.WarehouseStock
	SKU         string
	ProductName string
}

// WarehouseStockRepository puerto para la proyección bodega × producto × variante.
// Los métodos *ForUpdate bloquean la fila hasta el fin de la transacción.
type WarehouseStockRepository interface {
	// Get devuelve nil, nil si la proyección no existe.
	Get(ctx context.Context, key entity.StockKey) (*entity.WarehouseStock, error)
	// GetForUpdate devuelve nil, nil si la proyección no existe.
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.WarehouseStock, error)
	// GetOrCreateForUpdate crea la fila en cero si no existe y la devuelve bloqueada.
	GetOrCreateForUpdate(ctx context.Context, key entity.StockKey, now time.Time) (*entity.WarehouseStock, error)
	// Update persiste cantidades, umbrales, costos y marcas de tiempo.
	Update(ctx context.Context, stock *entity.WarehouseStock) error
	// ListByProduct devuelve las proyecciones de un producto en todas las bodegas.
	ListByProduct(ctx context.Context, productID string) ([]*entity.WarehouseStock, error)
	// ListLowStock devuelve las proyecciones con OnHand <= ReorderPoint, ordenadas por nombre de producto.
	ListLowStock(ctx context.Context, warehouseID string) ([]LowStockItem, error)
	// SumOnHand suma OnHand de todas las bodegas para el producto.
	SumOnHand(ctx context.Context, productID string) (decimal.Decimal, error)
}
