package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario.
// StockQuantity es el contador legado (no consciente de bodegas); lo actualiza el ledger en la
// misma transacción que la proyección por bodega.
type Product struct {
	ID            string
	CompanyID     string
	SKU           string
	Name          string
	UnitMeasure   string
	Cost          decimal.Decimal // costo de referencia cuando la bodega aún no tiene costo promedio
	StockQuantity decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
