package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estado del traslado entre bodegas.
type TransferStatus string

const (
	TransferStatusDraft     TransferStatus = "DRAFT"
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusApproved  TransferStatus = "APPROVED"
	TransferStatusShipped   TransferStatus = "SHIPPED"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// Terminal indica COMPLETED o CANCELLED.
func (s TransferStatus) Terminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusCancelled
}

// TransferType clasifica el motivo del traslado.
type TransferType string

const (
	TransferTypeInternal      TransferType = "INTERNAL"
	TransferTypeReplenishment TransferType = "REPLENISHMENT"
	TransferTypeReturn        TransferType = "RETURN"
)

// Valid indica si el tipo es conocido.
func (t TransferType) Valid() bool {
	switch t {
	case TransferTypeInternal, TransferTypeReplenishment, TransferTypeReturn:
		return true
	}
	return false
}

// StockTransfer raíz del agregado de traslado. Version se usa para compare-and-swap.
type StockTransfer struct {
	ID              int64
	TransferNumber  string
	FromWarehouseID string
	ToWarehouseID   string
	Status          TransferStatus
	TransferType    TransferType
	TotalQuantity   decimal.Decimal
	TotalValue      decimal.Decimal
	Notes           string
	CreatedBy       string
	ApprovedBy      string
	ShippedBy       string
	ReceivedBy      string
	CancelledBy     string
	CancelReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ApprovedAt      *time.Time
	ShippedAt       *time.Time
	ReceivedAt      *time.Time
	CancelledAt     *time.Time
	Version         int64
	Items           []StockTransferItem
}

// StockTransferItem línea del traslado.
// Invariantes: QuantityShipped <= QuantityRequested, QuantityReceived <= QuantityShipped.
type StockTransferItem struct {
	ID                int64
	TransferID        int64
	ProductID         string
	VariantID         string
	FromStockID       int64 // 0 = aún sin resolver
	ToStockID         int64
	QuantityRequested decimal.Decimal
	QuantityShipped   decimal.Decimal
	QuantityReceived  decimal.Decimal
	UnitCost          decimal.Decimal
}

// SourceKey clave de la proyección origen de la línea.
func (t *StockTransfer) SourceKey(item StockTransferItem) StockKey {
	return StockKey{WarehouseID: t.FromWarehouseID, ProductID: item.ProductID, VariantID: item.VariantID}
}

// DestinationKey clave de la proyección destino de la línea.
func (t *StockTransfer) DestinationKey(item StockTransferItem) StockKey {
	return StockKey{WarehouseID: t.ToWarehouseID, ProductID: item.ProductID, VariantID: item.VariantID}
}

// Clone copia profunda (incluye las líneas).
func (t *StockTransfer) Clone() *StockTransfer {
	c := *t
	c.Items = append([]StockTransferItem(nil), t.Items...)
	return &c
}
