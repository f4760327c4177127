package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Acciones del flujo de traslados (etiqueta de métricas y sufijo del evento).
const (
	ActionCreate   = "create"
	ActionSubmit   = "submit"
	ActionApprove  = "approve"
	ActionShip     = "ship"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
)

var eventTypes = map[string]string{
	ActionCreate:   "transfer.created",
	ActionSubmit:   "transfer.submitted",
	ActionApprove:  "transfer.approved",
	ActionShip:     "transfer.shipped",
	ActionComplete: "transfer.completed",
	ActionCancel:   "transfer.cancelled",
}

// maxNumberAttempts reintentos ante colisión del número de traslado.
const maxNumberAttempts = 3

// TransferLine producto (y variante) con la cantidad pedida.
type TransferLine struct {
	ProductID string
	VariantID string
	Quantity  decimal.Decimal
}

// CreateTransferInput entrada para crear un traslado entre dos bodegas.
type CreateTransferInput struct {
	FromWarehouseID string
	ToWarehouseID   string
	TransferType    entity.TransferType // vacío = INTERNAL
	Notes           string
	Draft           bool // crea en DRAFT en lugar de PENDING
	Items           []TransferLine
	UserID          string
}

// TransferUseCase máquina de estados del traslado:
// DRAFT → PENDING → APPROVED → SHIPPED → COMPLETED, y CANCELLED desde cualquier estado no terminal.
// Cada transición corre en una transacción: bloquea la cabecera, luego productos y proyecciones en
// orden ascendente, y guarda con compare-and-swap sobre Version.
type TransferUseCase struct {
	txRunner  TxRunner
	transfers repository.TransferRepository
	stocks    repository.WarehouseStockRepository
	numbers   TransferNumberGenerator
	publisher TransferEventPublisher
	metrics   Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewTransferUseCase construye el caso de uso. publisher y metrics pueden ser nil.
func NewTransferUseCase(
	txRunner TxRunner,
	transfers repository.TransferRepository,
	stocks repository.WarehouseStockRepository,
	numbers TransferNumberGenerator,
	publisher TransferEventPublisher,
	metrics Metrics,
	log *logger.Logger,
) *TransferUseCase {
	if publisher == nil {
		publisher = NoopPublisher()
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TransferUseCase{
		txRunner:  txRunner,
		transfers: transfers,
		stocks:    stocks,
		numbers:   numbers,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create valida las líneas, asigna número único y guarda el traslado en PENDING (o DRAFT).
// Totales y costo unitario se calculan sobre las cantidades pedidas.
func (uc *TransferUseCase) Create(ctx context.Context, in CreateTransferInput) (*entity.StockTransfer, error) {
	if err := validateCreate(&in); err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := uc.create(ctx, in)
	uc.metrics.TransferTransition(ActionCreate, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("transfer_id", out.ID).
		Str("transfer_number", out.TransferNumber).
		Str("status", string(out.Status)).
		Int("items", len(out.Items)).
		Msg("traslado creado")
	uc.publish(ctx, ActionCreate, out, in.UserID)
	return out, nil
}

func (uc *TransferUseCase) create(ctx context.Context, in CreateTransferInput) (*entity.StockTransfer, error) {
	status := entity.TransferStatusPending
	if in.Draft {
		status = entity.TransferStatusDraft
	}
	for attempt := 1; ; attempt++ {
		now := uc.now()
		number, err := uc.numbers.Next(ctx, now)
		if err != nil {
			return nil, fmt.Errorf("generar número de traslado: %w", err)
		}
		var out *entity.StockTransfer
		err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
			t := &entity.StockTransfer{
				TransferNumber:  number,
				FromWarehouseID: in.FromWarehouseID,
				ToWarehouseID:   in.ToWarehouseID,
				Status:          status,
				TransferType:    in.TransferType,
				Notes:           in.Notes,
				CreatedBy:       in.UserID,
				CreatedAt:       now,
				UpdatedAt:       now,
				TotalQuantity:   decimal.Zero,
				TotalValue:      decimal.Zero,
			}
			for _, id := range []string{in.FromWarehouseID, in.ToWarehouseID} {
				wh, err := repos.Warehouses.GetByID(ctx, id)
				if err != nil {
					return err
				}
				if wh == nil || !wh.Active {
					return domain.ErrWarehouseNotFound
				}
			}
			for _, line := range in.Items {
				cost, err := lineUnitCost(ctx, repos, in.FromWarehouseID, line)
				if err != nil {
					return err
				}
				t.Items = append(t.Items, entity.StockTransferItem{
					ProductID:         line.ProductID,
					VariantID:         line.VariantID,
					QuantityRequested: line.Quantity,
					QuantityShipped:   decimal.Zero,
					QuantityReceived:  decimal.Zero,
					UnitCost:          cost,
				})
				t.TotalQuantity = t.TotalQuantity.Add(line.Quantity)
				t.TotalValue = t.TotalValue.Add(line.Quantity.Mul(cost))
			}
			if err := repos.Transfers.Create(ctx, t); err != nil {
				return err
			}
			out = t
			return nil
		})
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) || attempt >= maxNumberAttempts {
			return nil, err
		}
		uc.log.Warn().Str("transfer_number", number).Int("attempt", attempt).Msg("número de traslado duplicado, reintentando")
	}
}

// Submit DRAFT → PENDING.
func (uc *TransferUseCase) Submit(ctx context.Context, id int64, userID string) (*entity.StockTransfer, error) {
	return uc.transition(ctx, ActionSubmit, id, userID, func(_ TxRepos, t *entity.StockTransfer, _ time.Time) error {
		if err := inventory.CheckTransition(t, entity.TransferStatusPending); err != nil {
			return err
		}
		t.Status = entity.TransferStatusPending
		return nil
	})
}

// Approve PENDING → APPROVED. Todo o nada: si alguna línea no tiene disponible suficiente en
// origen falla con *domain.AvailabilityError (todas las líneas faltantes) y nada cambia.
// No reserva; la reserva ocurre al despachar.
func (uc *TransferUseCase) Approve(ctx context.Context, id int64, userID string) (*entity.StockTransfer, error) {
	return uc.transition(ctx, ActionApprove, id, userID, func(repos TxRepos, t *entity.StockTransfer, now time.Time) error {
		if err := inventory.CheckTransition(t, entity.TransferStatusApproved); err != nil {
			return err
		}
		var shortages []domain.StockShortageError
		for _, i := range sortedItems(t) {
			item := t.Items[i]
			if _, err := repos.Products.GetForUpdate(ctx, item.ProductID); err != nil {
				return err
			}
			key := t.SourceKey(item)
			s, err := repos.Stocks.GetForUpdate(ctx, key)
			if err != nil {
				return err
			}
			available := decimal.Zero
			if s != nil {
				s.Recompute()
				available = s.Available
			}
			if available.LessThan(item.QuantityRequested) {
				shortages = append(shortages, domain.StockShortageError{
					WarehouseID: key.WarehouseID,
					ProductID:   key.ProductID,
					VariantID:   key.VariantID,
					Requested:   item.QuantityRequested,
					Available:   available,
				})
			}
		}
		if len(shortages) > 0 {
			return &domain.AvailabilityError{Shortages: shortages}
		}
		t.Status = entity.TransferStatusApproved
		t.ApprovedBy = userID
		t.ApprovedAt = &now
		return nil
	})
}

// Ship APPROVED → SHIPPED: QuantityShipped = QuantityRequested y RESERVE de esa cantidad en origen.
func (uc *TransferUseCase) Ship(ctx context.Context, id int64, userID string) (*entity.StockTransfer, error) {
	return uc.transition(ctx, ActionShip, id, userID, func(repos TxRepos, t *entity.StockTransfer, now time.Time) error {
		if err := inventory.CheckTransition(t, entity.TransferStatusShipped); err != nil {
			return err
		}
		correlationID := uuid.New().String()
		for _, i := range sortedItems(t) {
			item := &t.Items[i]
			_, stock, err := recordInTx(ctx, repos, uc.transferMovement(t, *item, t.FromWarehouseID,
				entity.MovementTypeReserve, item.QuantityRequested, userID, correlationID), now)
			if err != nil {
				return err
			}
			item.QuantityShipped = item.QuantityRequested
			item.FromStockID = stock.ID
		}
		t.Status = entity.TransferStatusShipped
		t.ShippedBy = userID
		t.ShippedAt = &now
		return nil
	})
}

// Complete SHIPPED → COMPLETED: QuantityReceived = QuantityShipped; en origen descuenta existencia
// y reserva (TRANSFER_OUT), en destino suma existencia (TRANSFER_IN) creando la proyección si falta.
// El par no toca el contador del producto y se completa aunque alguna bodega se haya desactivado.
func (uc *TransferUseCase) Complete(ctx context.Context, id int64, userID string) (*entity.StockTransfer, error) {
	return uc.transition(ctx, ActionComplete, id, userID, func(repos TxRepos, t *entity.StockTransfer, now time.Time) error {
		if err := inventory.CheckTransition(t, entity.TransferStatusCompleted); err != nil {
			return err
		}
		correlationID := uuid.New().String()
		for _, i := range sortedItems(t) {
			item := &t.Items[i]
			qty := item.QuantityShipped
			if !qty.IsPositive() {
				continue
			}
			outMv := uc.transferMovement(t, *item, t.FromWarehouseID, entity.MovementTypeTransferOut, qty, userID, correlationID)
			outMv.consumeReserved = true
			outMv.skipProductCounter = true
			_, src, err := recordInTx(ctx, repos, outMv, now)
			if err != nil {
				return err
			}
			inMv := uc.transferMovement(t, *item, t.ToWarehouseID, entity.MovementTypeTransferIn, qty, userID, correlationID)
			inMv.skipProductCounter = true
			inMv.settlesCommitment = true
			_, dst, err := recordInTx(ctx, repos, inMv, now)
			if err != nil {
				return err
			}
			item.QuantityReceived = qty
			item.FromStockID = src.ID
			item.ToStockID = dst.ID
		}
		t.Status = entity.TransferStatusCompleted
		t.ReceivedBy = userID
		t.ReceivedAt = &now
		return nil
	})
}

// Cancel * → CANCELLED salvo estados terminales. Desde SHIPPED libera exactamente lo reservado
// al despachar (UNRESERVE por línea, también en una bodega ya desactivada); desde
// DRAFT/PENDING/APPROVED no toca proyecciones.
func (uc *TransferUseCase) Cancel(ctx context.Context, id int64, userID, reason string) (*entity.StockTransfer, error) {
	return uc.transition(ctx, ActionCancel, id, userID, func(repos TxRepos, t *entity.StockTransfer, now time.Time) error {
		if err := inventory.CheckTransition(t, entity.TransferStatusCancelled); err != nil {
			return err
		}
		if t.Status == entity.TransferStatusShipped {
			correlationID := uuid.New().String()
			for _, i := range sortedItems(t) {
				item := t.Items[i]
				if !item.QuantityShipped.IsPositive() {
					continue
				}
				if _, _, err := recordInTx(ctx, repos, uc.transferMovement(t, item, t.FromWarehouseID,
					entity.MovementTypeUnreserve, item.QuantityShipped, userID, correlationID), now); err != nil {
					return err
				}
			}
		}
		t.Status = entity.TransferStatusCancelled
		t.CancelledBy = userID
		t.CancelledAt = &now
		t.CancelReason = reason
		return nil
	})
}

// Get devuelve el traslado con sus líneas.
func (uc *TransferUseCase) Get(ctx context.Context, id int64) (*entity.StockTransfer, error) {
	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTransferNotFound
	}
	return t, nil
}

// List traslados por estado, origen o destino, del más reciente al más antiguo.
func (uc *TransferUseCase) List(ctx context.Context, filter repository.TransferFilter) ([]*entity.StockTransfer, error) {
	if filter.Status != "" && !validStatus(filter.Status) {
		return nil, domain.ErrInvalidInput
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return uc.transfers.List(ctx, filter)
}

// ValidateAvailability lectura sin efectos: devuelve cada línea cuyo disponible en la bodega no alcanza.
// Slice vacío = todo disponible.
func (uc *TransferUseCase) ValidateAvailability(ctx context.Context, warehouseID string, lines []TransferLine) ([]domain.StockShortageError, error) {
	if warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	shortages := []domain.StockShortageError{}
	for _, line := range lines {
		key := entity.StockKey{WarehouseID: warehouseID, ProductID: line.ProductID, VariantID: line.VariantID}
		s, err := uc.stocks.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		available := decimal.Zero
		if s != nil {
			available = s.OnHand.Sub(s.Reserved)
		}
		if available.LessThan(line.Quantity) {
			shortages = append(shortages, domain.StockShortageError{
				WarehouseID: warehouseID,
				ProductID:   line.ProductID,
				VariantID:   line.VariantID,
				Requested:   line.Quantity,
				Available:   available,
			})
		}
	}
	return shortages, nil
}

// GenerateTransferNumber reserva el siguiente número TRF-YYYYMMDD-NNNNN.
func (uc *TransferUseCase) GenerateTransferNumber(ctx context.Context) (string, error) {
	return uc.numbers.Next(ctx, uc.now())
}

type transitionFunc func(repos TxRepos, t *entity.StockTransfer, now time.Time) error

// transition carga y bloquea la cabecera, aplica fn y guarda con compare-and-swap.
// Cualquier error revierte la transacción completa (traslado y proyecciones quedan como estaban).
func (uc *TransferUseCase) transition(ctx context.Context, action string, id int64, userID string, fn transitionFunc) (*entity.StockTransfer, error) {
	start := time.Now()
	var out *entity.StockTransfer
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		t, err := repos.Transfers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrTransferNotFound
		}
		now := uc.now()
		if err := fn(repos, t, now); err != nil {
			return err
		}
		if !inventory.ValidateTransferItems(t.Items) {
			return fmt.Errorf("traslado %d: cantidades de línea inconsistentes: %w", t.ID, domain.ErrInvalidInput)
		}
		t.UpdatedAt = now
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	uc.metrics.TransferTransition(action, err, time.Since(start))
	if err != nil {
		uc.log.Debug().Err(err).Int64("transfer_id", id).Str("action", action).Msg("transición de traslado rechazada")
		return nil, err
	}
	uc.log.Info().
		Int64("transfer_id", out.ID).
		Str("transfer_number", out.TransferNumber).
		Str("action", action).
		Str("status", string(out.Status)).
		Msg("traslado actualizado")
	uc.publish(ctx, action, out, userID)
	return out, nil
}

// publish corre después del commit; un fallo del bus solo se registra.
func (uc *TransferUseCase) publish(ctx context.Context, action string, t *entity.StockTransfer, actorID string) {
	ev := TransferEvent{
		Type:           eventTypes[action],
		TransferID:     t.ID,
		TransferNumber: t.TransferNumber,
		Status:         string(t.Status),
		FromWarehouse:  t.FromWarehouseID,
		ToWarehouse:    t.ToWarehouseID,
		TotalQuantity:  t.TotalQuantity.String(),
		TotalValue:     t.TotalValue.String(),
		ActorID:        actorID,
		OccurredAt:     t.UpdatedAt,
	}
	if err := uc.publisher.PublishTransferEvent(ctx, ev); err != nil {
		uc.log.Error().Err(err).Int64("transfer_id", t.ID).Str("event", ev.Type).Msg("no se pudo publicar evento de traslado")
	}
}

func (uc *TransferUseCase) transferMovement(
	t *entity.StockTransfer,
	item entity.StockTransferItem,
	warehouseID string,
	mt entity.MovementType,
	qty decimal.Decimal,
	userID, correlationID string,
) MovementInput {
	mv := MovementInput{
		ProductID:     item.ProductID,
		VariantID:     item.VariantID,
		WarehouseID:   warehouseID,
		Type:          mt,
		Quantity:      qty,
		ReferenceType: entity.ReferenceStockTransfer,
		ReferenceID:   strconv.FormatInt(t.ID, 10),
		UserID:        userID,
		Notes:         t.TransferNumber,
		CorrelationID: correlationID,
	}
	if mt.ChangesOnHand() && item.UnitCost.IsPositive() {
		c := item.UnitCost
		mv.UnitCost = &c
	}
	return mv
}

// sortedItems índices de las líneas por (producto, variante): los productos se bloquean antes que
// sus proyecciones y siempre en el mismo orden, así dos transiciones concurrentes no se cruzan.
func sortedItems(t *entity.StockTransfer) []int {
	idx := make([]int, len(t.Items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return t.SourceKey(t.Items[idx[a]]).Less(t.SourceKey(t.Items[idx[b]]))
	})
	return idx
}

// lineUnitCost costo promedio de la proyección origen si es positivo; si no, el costo del producto.
func lineUnitCost(ctx context.Context, repos TxRepos, warehouseID string, line TransferLine) (decimal.Decimal, error) {
	p, err := repos.Products.GetByID(ctx, line.ProductID)
	if err != nil {
		return decimal.Zero, err
	}
	if p == nil {
		return decimal.Zero, domain.ErrProductNotFound
	}
	s, err := repos.Stocks.Get(ctx, entity.StockKey{WarehouseID: warehouseID, ProductID: line.ProductID, VariantID: line.VariantID})
	if err != nil {
		return decimal.Zero, err
	}
	if s != nil && s.AverageCost.IsPositive() {
		return s.AverageCost, nil
	}
	return p.Cost, nil
}

func validateCreate(in *CreateTransferInput) error {
	if in.FromWarehouseID == "" || in.ToWarehouseID == "" || in.FromWarehouseID == in.ToWarehouseID {
		return domain.ErrInvalidInput
	}
	if in.TransferType == "" {
		in.TransferType = entity.TransferTypeInternal
	}
	if !in.TransferType.Valid() {
		return domain.ErrInvalidInput
	}
	return validateLines(in.Items)
}

// validateLines al menos una línea, cantidades positivas y sin (producto, variante) repetido.
func validateLines(lines []TransferLine) error {
	if len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	seen := make(map[[2]string]struct{}, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || !l.Quantity.IsPositive() || !inventory.FitsScale(l.Quantity) {
			return domain.ErrInvalidInput
		}
		k := [2]string{l.ProductID, l.VariantID}
		if _, dup := seen[k]; dup {
			return domain.ErrInvalidInput
		}
		seen[k] = struct{}{}
	}
	return nil
}

func validStatus(s entity.TransferStatus) bool {
	switch s {
	case entity.TransferStatusDraft, entity.TransferStatusPending, entity.TransferStatusApproved,
		entity.TransferStatusShipped, entity.TransferStatusCompleted, entity.TransferStatusCancelled:
		return true
	}
	return false
}
