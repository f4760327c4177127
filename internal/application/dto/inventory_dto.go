package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Sin warehouse_id el movimiento solo afecta el contador del producto.
type RegisterMovementRequest struct {
	ProductID     string           `json:"product_id"`
	VariantID     string           `json:"variant_id,omitempty"`
	WarehouseID   string           `json:"warehouse_id,omitempty"`
	Type          string           `json:"type"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	BatchNumber   string           `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// MovementResponse registro del ledger.
type MovementResponse struct {
	ID            int64            `json:"id"`
	CorrelationID string           `json:"correlation_id"`
	ProductID     string           `json:"product_id"`
	VariantID     string           `json:"variant_id,omitempty"`
	WarehouseID   string           `json:"warehouse_id,omitempty"`
	Type          string           `json:"type"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	BatchNumber   string           `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty"`
	CreatedBy     string           `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
	Notes         string           `json:"notes,omitempty"`
}

// MovementListResponse página del ledger.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// UpdateStockRequest body para PUT /api/inventory/stock (corrección ad-hoc).
type UpdateStockRequest struct {
	WarehouseID string           `json:"warehouse_id"`
	ProductID   string           `json:"product_id"`
	VariantID   string           `json:"variant_id,omitempty"`
	Type        string           `json:"type"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

// UpdateStockResponse proyección resultante y movimiento registrado.
type UpdateStockResponse struct {
	Stock    StockResponse    `json:"stock"`
	Movement MovementResponse `json:"movement"`
}

// ThresholdsRequest body para PUT /api/inventory/stock/thresholds.
type ThresholdsRequest struct {
	WarehouseID  string           `json:"warehouse_id"`
	ProductID    string           `json:"product_id"`
	VariantID    string           `json:"variant_id,omitempty"`
	MinLevel     decimal.Decimal  `json:"min_level"`
	MaxLevel     *decimal.Decimal `json:"max_level,omitempty"`
	ReorderPoint decimal.Decimal  `json:"reorder_point"`
}

// StockResponse proyección bodega × producto × variante.
type StockResponse struct {
	ID             int64            `json:"id"`
	WarehouseID    string           `json:"warehouse_id"`
	ProductID      string           `json:"product_id"`
	VariantID      string           `json:"variant_id,omitempty"`
	OnHand         decimal.Decimal  `json:"quantity_on_hand"`
	Reserved       decimal.Decimal  `json:"quantity_reserved"`
	Available      decimal.Decimal  `json:"quantity_available"`
	MinLevel       decimal.Decimal  `json:"min_level"`
	MaxLevel       *decimal.Decimal `json:"max_level,omitempty"`
	ReorderPoint   decimal.Decimal  `json:"reorder_point"`
	AverageCost    decimal.Decimal  `json:"average_cost"`
	LastCost       decimal.Decimal  `json:"last_cost"`
	LastMovementAt *time.Time       `json:"last_movement_at,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// LowStockResponse proyección bajo punto de reorden.
type LowStockResponse struct {
	StockResponse
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
}

// ReconciliationResponse contador del producto frente a la suma de proyecciones.
type ReconciliationResponse struct {
	ProductID       string          `json:"product_id"`
	ProductCounter  decimal.Decimal `json:"product_stock_quantity"`
	ProjectionTotal decimal.Decimal `json:"warehouse_on_hand_total"`
	Difference      decimal.Decimal `json:"difference"`
	Consistent      bool            `json:"consistent"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para una proyección bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	WarehouseID        string          `json:"warehouse_id"`
	ProductID          string          `json:"product_id"`
	VariantID          string          `json:"variant_id,omitempty"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	OnHand             decimal.Decimal `json:"quantity_on_hand"`
	Available          decimal.Decimal `json:"quantity_available"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // MaxLevel o ReorderPoint * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - Available
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
