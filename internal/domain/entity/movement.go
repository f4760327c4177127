package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de referencia usados por los productores del ledger.
const (
	ReferenceStockTransfer = "STOCK_TRANSFER"
	ReferenceAdjustment    = "ADJUSTMENT"
	ReferenceSale          = "SALE"
	ReferenceRefund        = "REFUND"
	ReferenceReceiving     = "STOCK_RECEIVING"
)

// MovementRecord registro inmutable del ledger de inventario. Se crea una sola vez por
// escritura y nunca se actualiza ni se elimina.
// Quantity lleva signo: positivo entradas/reservas, negativo salidas/liberaciones.
type MovementRecord struct {
	ID            int64
	CorrelationID string // agrupa los registros de una misma escritura o transición
	ProductID     string
	VariantID     string // vacío = sin variante
	WarehouseID   string // vacío = movimiento legado solo sobre el producto
	Type          MovementType
	Quantity      decimal.Decimal
	UnitCost      *decimal.Decimal
	ReferenceType string
	ReferenceID   string
	BatchNumber   string
	ExpiryDate    *time.Time
	CreatedBy     string
	CreatedAt     time.Time
	Notes         string
}

// TotalCost valor del movimiento (Quantity × UnitCost); cero si no tiene costo.
func (m *MovementRecord) TotalCost() decimal.Decimal {
	if m.UnitCost == nil {
		return decimal.Zero
	}
	return m.Quantity.Mul(*m.UnitCost)
}
