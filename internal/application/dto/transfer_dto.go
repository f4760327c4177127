package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferLineRequest línea solicitada de un traslado.
type TransferLineRequest struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	FromWarehouseID string                `json:"from_warehouse_id"`
	ToWarehouseID   string                `json:"to_warehouse_id"`
	TransferType    string                `json:"transfer_type,omitempty"` // INTERNAL por defecto
	Notes           string                `json:"notes,omitempty"`
	Draft           bool                  `json:"draft,omitempty"`
	Items           []TransferLineRequest `json:"items"`
}

// CancelTransferRequest body opcional para POST /api/transfers/:id/cancel.
type CancelTransferRequest struct {
	Reason string `json:"reason"`
}

// ValidateAvailabilityRequest body para POST /api/transfers/validate-availability.
type ValidateAvailabilityRequest struct {
	WarehouseID string                `json:"warehouse_id"`
	Items       []TransferLineRequest `json:"items"`
}

// ShortageDTO línea sin disponibilidad suficiente.
type ShortageDTO struct {
	WarehouseID string          `json:"warehouse_id"`
	ProductID   string          `json:"product_id"`
	VariantID   string          `json:"variant_id,omitempty"`
	Requested   decimal.Decimal `json:"requested"`
	Available   decimal.Decimal `json:"available"`
}

// AvailabilityResponse resultado de la validación de disponibilidad.
type AvailabilityResponse struct {
	Available bool          `json:"available"`
	Shortages []ShortageDTO `json:"shortages"`
}

// TransferNumberResponse número de traslado reservado.
type TransferNumberResponse struct {
	TransferNumber string `json:"transfer_number"`
}

// TransferItemResponse línea del traslado.
type TransferItemResponse struct {
	ID                int64           `json:"id"`
	ProductID         string          `json:"product_id"`
	VariantID         string          `json:"variant_id,omitempty"`
	FromStockID       int64           `json:"from_stock_id,omitempty"`
	ToStockID         int64           `json:"to_stock_id,omitempty"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
	QuantityShipped   decimal.Decimal `json:"quantity_shipped"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
}

// TransferResponse traslado con sus líneas.
type TransferResponse struct {
	ID              int64                  `json:"id"`
	TransferNumber  string                 `json:"transfer_number"`
	FromWarehouseID string                 `json:"from_warehouse_id"`
	ToWarehouseID   string                 `json:"to_warehouse_id"`
	Status          string                 `json:"status"`
	TransferType    string                 `json:"transfer_type"`
	TotalQuantity   decimal.Decimal        `json:"total_quantity"`
	TotalValue      decimal.Decimal        `json:"total_value"`
	Notes           string                 `json:"notes,omitempty"`
	CreatedBy       string                 `json:"created_by"`
	ApprovedBy      string                 `json:"approved_by,omitempty"`
	ShippedBy       string                 `json:"shipped_by,omitempty"`
	ReceivedBy      string                 `json:"received_by,omitempty"`
	CancelledBy     string                 `json:"cancelled_by,omitempty"`
	CancelReason    string                 `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	ApprovedAt      *time.Time             `json:"approved_at,omitempty"`
	ShippedAt       *time.Time             `json:"shipped_at,omitempty"`
	ReceivedAt      *time.Time             `json:"received_at,omitempty"`
	CancelledAt     *time.Time             `json:"cancelled_at,omitempty"`
	Version         int64                  `json:"version"`
	Items           []TransferItemResponse `json:"items"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
