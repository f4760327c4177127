package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// UpdateStockInput corrección ad-hoc sobre una proyección; pasa por el ledger como cualquier escritura.
type UpdateStockInput struct {
	Key      entity.StockKey
	Type     entity.MovementType
	Quantity decimal.Decimal
	UnitCost *decimal.Decimal
	UserID   string
	Notes    string
}

// ThresholdsInput umbrales de reposición de una proyección. MaxLevel nil = sin máximo.
type ThresholdsInput struct {
	Key          entity.StockKey
	MinLevel     decimal.Decimal
	MaxLevel     *decimal.Decimal
	ReorderPoint decimal.Decimal
}

// Reconciliation compara el contador legado del producto con la suma de sus proyecciones.
type Reconciliation struct {
	ProductID       string
	ProductCounter  decimal.Decimal
	ProjectionTotal decimal.Decimal
	Difference      decimal.Decimal // ProductCounter - ProjectionTotal
	Consistent      bool
}

// StockUseCase consultas y correcciones sobre la proyección bodega × producto × variante.
type StockUseCase struct {
	txRunner TxRunner
	stocks   repository.WarehouseStockRepository
	products repository.ProductRepository
	metrics  Metrics
	log      *logger.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner TxRunner,
	stocks repository.WarehouseStockRepository,
	products repository.ProductRepository,
	metrics Metrics,
	log *logger.Logger,
) *StockUseCase {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockUseCase{txRunner: txRunner, stocks: stocks, products: products, metrics: metrics, log: log}
}

// GetOrCreate devuelve la proyección y la crea en cero si no existe. No genera movimiento.
func (uc *StockUseCase) GetOrCreate(ctx context.Context, key entity.StockKey) (*entity.WarehouseStock, error) {
	if key.WarehouseID == "" || key.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.WarehouseStock
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		if err := checkLocation(ctx, repos, key); err != nil {
			return err
		}
		s, err := repos.Stocks.GetOrCreateForUpdate(ctx, key, time.Now().UTC())
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get lectura sin efectos; ErrNotFound si la proyección no existe.
func (uc *StockUseCase) Get(ctx context.Context, key entity.StockKey) (*entity.WarehouseStock, error) {
	if key.WarehouseID == "" || key.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.stocks.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// ListByProduct proyecciones de un producto en todas sus bodegas.
func (uc *StockUseCase) ListByProduct(ctx context.Context, productID string) ([]*entity.WarehouseStock, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.stocks.ListByProduct(ctx, productID)
}

// UpdateWarehouseStock aplica una corrección (entrada, salida, reserva...) a la proyección.
// Se registra en el ledger con referencia ADJUSTMENT.
func (uc *StockUseCase) UpdateWarehouseStock(ctx context.Context, in UpdateStockInput) (*entity.WarehouseStock, *entity.MovementRecord, error) {
	if in.Key.WarehouseID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	mv := MovementInput{
		ProductID:     in.Key.ProductID,
		VariantID:     in.Key.VariantID,
		WarehouseID:   in.Key.WarehouseID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		UnitCost:      in.UnitCost,
		ReferenceType: entity.ReferenceAdjustment,
		UserID:        in.UserID,
		Notes:         in.Notes,
	}
	if err := validateMovement(mv); err != nil {
		return nil, nil, err
	}
	now := time.Now().UTC()

	var (
		rec   *entity.MovementRecord
		stock *entity.WarehouseStock
	)
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		r, s, err := recordInTx(ctx, repos, mv, now)
		if err != nil {
			return err
		}
		rec, stock = r, s
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	uc.metrics.MovementRecorded(rec.Type)
	uc.log.Info().
		Str("warehouse_id", in.Key.WarehouseID).
		Str("product_id", in.Key.ProductID).
		Str("movement_type", rec.Type.String()).
		Str("on_hand", stock.OnHand.String()).
		Msg("stock de bodega actualizado")
	return stock, rec, nil
}

// SetThresholds fija mínimo, máximo y punto de reorden (crea la proyección si no existe).
func (uc *StockUseCase) SetThresholds(ctx context.Context, in ThresholdsInput) (*entity.WarehouseStock, error) {
	if in.Key.WarehouseID == "" || in.Key.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MinLevel.IsNegative() || in.ReorderPoint.IsNegative() ||
		!inventory.FitsScale(in.MinLevel) || !inventory.FitsScale(in.ReorderPoint) {
		return nil, domain.ErrInvalidInput
	}
	if in.MaxLevel != nil && (in.MaxLevel.IsNegative() || in.MaxLevel.LessThan(in.MinLevel)) {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.WarehouseStock
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		if err := checkLocation(ctx, repos, in.Key); err != nil {
			return err
		}
		now := time.Now().UTC()
		s, err := repos.Stocks.GetOrCreateForUpdate(ctx, in.Key, now)
		if err != nil {
			return err
		}
		s.MinLevel = in.MinLevel
		s.MaxLevel = in.MaxLevel
		s.ReorderPoint = in.ReorderPoint
		s.UpdatedAt = now
		if err := repos.Stocks.Update(ctx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LowStock proyecciones con OnHand <= ReorderPoint, por nombre de producto.
// warehouseID vacío consulta todas las bodegas.
func (uc *StockUseCase) LowStock(ctx context.Context, warehouseID string) ([]repository.LowStockItem, error) {
	items, err := uc.stocks.ListLowStock(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []repository.LowStockItem{}
	}
	return items, nil
}

// Reconcile compara Product.StockQuantity con la suma de OnHand de sus proyecciones.
// Los movimientos legados sin bodega solo mueven el contador, por eso la diferencia puede ser legítima.
func (uc *StockUseCase) Reconcile(ctx context.Context, productID string) (*Reconciliation, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	total, err := uc.stocks.SumOnHand(ctx, productID)
	if err != nil {
		return nil, err
	}
	diff := p.StockQuantity.Sub(total)
	r := &Reconciliation{
		ProductID:       productID,
		ProductCounter:  p.StockQuantity,
		ProjectionTotal: total,
		Difference:      diff,
		Consistent:      diff.IsZero(),
	}
	if !r.Consistent {
		uc.log.Warn().
			Str("product_id", productID).
			Str("difference", diff.String()).
			Msg("contador de producto difiere de las proyecciones")
	}
	return r, nil
}

// checkLocation valida que el producto exista y la bodega esté activa.
func checkLocation(ctx context.Context, repos TxRepos, key entity.StockKey) error {
	p, err := repos.Products.GetByID(ctx, key.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrProductNotFound
	}
	wh, err := repos.Warehouses.GetByID(ctx, key.WarehouseID)
	if err != nil {
		return err
	}
	if wh == nil || !wh.Active {
		return domain.ErrWarehouseNotFound
	}
	return nil
}
