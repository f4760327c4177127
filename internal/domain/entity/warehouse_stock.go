package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseStock proyección materializada del stock de un producto (y variante) en una bodega.
// Invariantes en estado confirmado: OnHand >= 0, Reserved >= 0, Reserved <= OnHand.
// Available siempre se recalcula como OnHand - Reserved.
type WarehouseStock struct {
	ID             int64
	WarehouseID    string
	ProductID      string
	VariantID      string
	OnHand         decimal.Decimal
	Reserved       decimal.Decimal
	Available      decimal.Decimal
	MinLevel       decimal.Decimal
	MaxLevel       *decimal.Decimal // nil = sin máximo
	ReorderPoint   decimal.Decimal
	AverageCost    decimal.Decimal
	LastCost       decimal.Decimal
	LastMovementAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewWarehouseStock fila en cero con umbrales por defecto (min=0, sin max, reorden=0).
func NewWarehouseStock(key StockKey, now time.Time) *WarehouseStock {
	return &WarehouseStock{
		WarehouseID:  key.WarehouseID,
		ProductID:    key.ProductID,
		VariantID:    key.VariantID,
		OnHand:       decimal.Zero,
		Reserved:     decimal.Zero,
		Available:    decimal.Zero,
		MinLevel:     decimal.Zero,
		ReorderPoint: decimal.Zero,
		AverageCost:  decimal.Zero,
		LastCost:     decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Key devuelve la clave única de la proyección.
func (s *WarehouseStock) Key() StockKey {
	return StockKey{WarehouseID: s.WarehouseID, ProductID: s.ProductID, VariantID: s.VariantID}
}

// Recompute recalcula Available a partir de OnHand y Reserved.
func (s *WarehouseStock) Recompute() {
	s.Available = s.OnHand.Sub(s.Reserved)
}
