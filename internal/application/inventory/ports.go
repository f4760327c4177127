package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Movements  repository.MovementRepository
	Stocks     repository.WarehouseStockRepository
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Transfers  repository.TransferRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback y ningún cambio es visible; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// TransferNumberGenerator asigna números de traslado únicos (TRF-YYYYMMDD-NNNNN).
type TransferNumberGenerator interface {
	Next(ctx context.Context, now time.Time) (string, error)
}

// TransferEvent evento de ciclo de vida publicado después del commit.
type TransferEvent struct {
	Type           string    `json:"type"`
	TransferID     int64     `json:"transfer_id"`
	TransferNumber string    `json:"transfer_number"`
	Status         string    `json:"status"`
	FromWarehouse  string    `json:"from_warehouse_id"`
	ToWarehouse    string    `json:"to_warehouse_id"`
	TotalQuantity  string    `json:"total_quantity"`
	TotalValue     string    `json:"total_value"`
	ActorID        string    `json:"actor_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// TransferEventPublisher publica eventos de traslado (Kafka u otro bus).
type TransferEventPublisher interface {
	PublishTransferEvent(ctx context.Context, event TransferEvent) error
}

// Metrics contadores de negocio del núcleo de inventario.
type Metrics interface {
	MovementRecorded(t entity.MovementType)
	TransferTransition(action string, err error, elapsed time.Duration)
}

type noopPublisher struct{}

func (noopPublisher) PublishTransferEvent(context.Context, TransferEvent) error { return nil }

type noopMetrics struct{}

func (noopMetrics) MovementRecorded(entity.MovementType)            {}
func (noopMetrics) TransferTransition(string, error, time.Duration) {}

// NoopPublisher publicador que descarta los eventos (Kafka no configurado).
func NoopPublisher() TransferEventPublisher { return noopPublisher{} }

// NoopMetrics métricas deshabilitadas.
func NoopMetrics() Metrics { return noopMetrics{} }
