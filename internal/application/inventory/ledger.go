package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// MovementInput entrada para registrar un movimiento en el ledger.
// Sin WarehouseID el movimiento solo afecta el contador legado del producto.
// Quantity es magnitud positiva, salvo TRANSFER donde el signo indica la dirección.
type MovementInput struct {
	ProductID     string
	VariantID     string
	WarehouseID   string
	Type          entity.MovementType
	Quantity      decimal.Decimal
	UnitCost      *decimal.Decimal
	ReferenceType string
	ReferenceID   string
	BatchNumber   string
	ExpiryDate    *time.Time
	UserID        string
	Notes         string
	CorrelationID string

	// solo el flujo de traslados despacha contra una reserva previa
	consumeReserved bool
	// par TRANSFER_OUT/TRANSFER_IN de un traslado: neto cero en el contador del producto
	skipProductCounter bool
	// movimiento que cierra un compromiso previo (completar o anular un traslado despachado);
	// se permite aunque la bodega ya esté desactivada
	settlesCommitment bool
}

// LedgerUseCase registra movimientos de inventario: en una sola transacción aplica el efecto
// sobre la proyección (SELECT FOR UPDATE) y el contador del producto, y guarda el registro.
type LedgerUseCase struct {
	txRunner  TxRunner
	movements repository.MovementRepository
	metrics   Metrics
	log       *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	movements repository.MovementRepository,
	metrics Metrics,
	log *logger.Logger,
) *LedgerUseCase {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{txRunner: txRunner, movements: movements, metrics: metrics, log: log}
}

// Record registra el movimiento de forma atómica. Si la actualización del agregado falla
// (p. ej. stock insuficiente) la transacción se revierte y no queda registro huérfano.
func (uc *LedgerUseCase) Record(ctx context.Context, in MovementInput) (*entity.MovementRecord, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	if in.CorrelationID == "" {
		in.CorrelationID = uuid.New().String()
	}
	now := time.Now().UTC()

	var rec *entity.MovementRecord
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		r, _, err := recordInTx(ctx, repos, in, now)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.MovementRecorded(rec.Type)
	uc.log.Info().
		Int64("movement_id", rec.ID).
		Str("movement_type", rec.Type.String()).
		Str("product_id", rec.ProductID).
		Str("warehouse_id", rec.WarehouseID).
		Str("quantity", rec.Quantity.String()).
		Msg("movimiento registrado")
	return rec, nil
}

// RecordInTx registra el movimiento usando los repositorios del llamador (misma transacción).
// Lo usan los productores externos (ventas, devoluciones, recepción). Si retorna error el
// llamador debe hacer rollback.
func (uc *LedgerUseCase) RecordInTx(ctx context.Context, repos TxRepos, in MovementInput, now time.Time) (*entity.MovementRecord, error) {
	if in.CorrelationID == "" {
		in.CorrelationID = uuid.New().String()
	}
	rec, _, err := recordInTx(ctx, repos, in, now)
	if err != nil {
		return nil, err
	}
	uc.metrics.MovementRecorded(rec.Type)
	return rec, nil
}

// List consulta el ledger (solo lectura), del más reciente al más antiguo.
func (uc *LedgerUseCase) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.MovementRecord, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.ErrInvalidMovementType
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, domain.ErrInvalidInput
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return uc.movements.List(ctx, filter)
}

// ByProduct movimientos de un producto.
func (uc *LedgerUseCase) ByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.MovementRecord, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.List(ctx, repository.MovementFilter{ProductID: productID, Limit: limit, Offset: offset})
}

// ByDateRange movimientos con fecha en [from, to] (ambos inclusivos).
func (uc *LedgerUseCase) ByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	return uc.List(ctx, repository.MovementFilter{From: &from, To: &to, Limit: limit, Offset: offset})
}

// ByType movimientos de un tipo.
func (uc *LedgerUseCase) ByType(ctx context.Context, t entity.MovementType, limit, offset int) ([]*entity.MovementRecord, error) {
	if !t.Valid() {
		return nil, domain.ErrInvalidMovementType
	}
	return uc.List(ctx, repository.MovementFilter{Type: t, Limit: limit, Offset: offset})
}

// ByReference movimientos producidos por un documento (p. ej. un traslado).
func (uc *LedgerUseCase) ByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.MovementRecord, error) {
	if referenceType == "" || referenceID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.List(ctx, repository.MovementFilter{
		ReferenceType: referenceType, ReferenceID: referenceID, Limit: maxListLimit,
	})
}

// addsCommitment: entradas y reservas. Una bodega desactivada solo puede vaciarse.
func addsCommitment(in MovementInput) bool {
	switch in.Type.Effect() {
	case entity.EffectIncrease, entity.EffectReserve:
		return true
	case entity.EffectSigned:
		return in.Quantity.IsPositive()
	}
	return false
}

func validateMovement(in MovementInput) error {
	if !in.Type.Valid() {
		return domain.ErrInvalidMovementType
	}
	if in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if err := inventory.ValidateQuantity(in.Type, in.Quantity); err != nil {
		return err
	}
	if !in.Type.ChangesOnHand() && in.WarehouseID == "" {
		// las reservas solo existen por bodega
		return domain.ErrInvalidInput
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return domain.ErrInvalidInput
	}
	if in.consumeReserved && in.Type.Effect() != entity.EffectDecrease {
		return domain.ErrInvalidInput
	}
	return nil
}

// recordInTx: bloquea producto y proyección, aplica el efecto, actualiza el contador legado y
// guarda el registro. Devuelve también la proyección tocada (nil si no hay bodega).
func recordInTx(ctx context.Context, repos TxRepos, in MovementInput, now time.Time) (*entity.MovementRecord, *entity.WarehouseStock, error) {
	if err := validateMovement(in); err != nil {
		return nil, nil, err
	}
	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrProductNotFound
	}

	unitCost := in.UnitCost
	var stock *entity.WarehouseStock
	if in.WarehouseID != "" {
		wh, err := repos.Warehouses.GetByID(ctx, in.WarehouseID)
		if err != nil {
			return nil, nil, err
		}
		if wh == nil {
			return nil, nil, domain.ErrWarehouseNotFound
		}
		if !wh.Active && !in.settlesCommitment && addsCommitment(in) {
			return nil, nil, domain.ErrWarehouseInactive
		}
		key := entity.StockKey{WarehouseID: in.WarehouseID, ProductID: in.ProductID, VariantID: in.VariantID}
		stock, err = repos.Stocks.GetOrCreateForUpdate(ctx, key, now)
		if err != nil {
			return nil, nil, err
		}
		// Salidas sin costo explícito se valoran al costo promedio de la bodega
		if unitCost == nil && in.Type.ChangesOnHand() && stock.AverageCost.IsPositive() {
			c := stock.AverageCost
			unitCost = &c
		}
		if err := inventory.ApplyMovement(stock, in.Type, in.Quantity, inventory.ApplyOptions{
			UnitCost:        in.UnitCost,
			ConsumeReserved: in.consumeReserved,
		}); err != nil {
			return nil, nil, err
		}
		stock.LastMovementAt = &now
		stock.UpdatedAt = now
		if err := repos.Stocks.Update(ctx, stock); err != nil {
			return nil, nil, err
		}
	}

	if in.Type.ChangesOnHand() && !in.skipProductCounter {
		if in.WarehouseID == "" {
			// sin bodega el contador es la única existencia: se rechaza
			if err := inventory.ApplyToProduct(product, in.Type, in.Quantity); err != nil {
				return nil, nil, err
			}
		} else {
			// con bodega manda la proyección; la deriva del contador la reporta Reconcile
			inventory.ApplyToProductFloored(product, in.Type, in.Quantity)
		}
		if err := repos.Products.UpdateStockQuantity(ctx, product.ID, product.StockQuantity); err != nil {
			return nil, nil, err
		}
	}
	if unitCost == nil && in.Type.ChangesOnHand() && product.Cost.IsPositive() {
		c := product.Cost
		unitCost = &c
	}

	rec := &entity.MovementRecord{
		CorrelationID: in.CorrelationID,
		ProductID:     in.ProductID,
		VariantID:     in.VariantID,
		WarehouseID:   in.WarehouseID,
		Type:          in.Type,
		Quantity:      inventory.SignedDelta(in.Type, in.Quantity),
		UnitCost:      unitCost,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		BatchNumber:   in.BatchNumber,
		ExpiryDate:    in.ExpiryDate,
		CreatedBy:     in.UserID,
		CreatedAt:     now,
		Notes:         in.Notes,
	}
	if rec.CorrelationID == "" {
		rec.CorrelationID = uuid.New().String()
	}
	if err := repos.Movements.Create(ctx, rec); err != nil {
		return nil, nil, err
	}
	return rec, stock, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
