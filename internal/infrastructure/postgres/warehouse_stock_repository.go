package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.WarehouseStockRepository = (*WarehouseStockRepo)(nil)

const stockColumns = `id, warehouse_id, product_id, variant_id, quantity_on_hand, quantity_reserved,
	min_level, max_level, reorder_point, average_cost, last_cost, last_movement_at, created_at, updated_at`

// WarehouseStockRepo proyección warehouse_stock sobre PostgreSQL (usable con pool o tx).
// quantity_available no se guarda: se recalcula al leer.
type WarehouseStockRepo struct {
	q Querier
}

// NewWarehouseStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWarehouseStockRepository(q Querier) *WarehouseStockRepo {
	return &WarehouseStockRepo{q: q}
}

// Get obtiene la proyección; nil, nil si no existe.
func (r *WarehouseStockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.WarehouseStock, error) {
	return r.get(ctx, key, "")
}

// GetForUpdate obtiene la proyección y bloquea la fila (SELECT FOR UPDATE).
func (r *WarehouseStockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.WarehouseStock, error) {
	return r.get(ctx, key, " FOR UPDATE")
}

func (r *WarehouseStockRepo) get(ctx context.Context, key entity.StockKey, lock string) (*entity.WarehouseStock, error) {
	query := `SELECT ` + stockColumns + `
		FROM warehouse_stock WHERE warehouse_id = $1 AND product_id = $2 AND variant_id = $3` + lock
	s, err := scanStock(r.q.QueryRow(ctx, query, key.WarehouseID, key.ProductID, key.VariantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get warehouse stock", err)
	}
	return s, nil
}

// GetOrCreateForUpdate inserta la fila en cero si falta (ON CONFLICT DO NOTHING) y luego la bloquea.
func (r *WarehouseStockRepo) GetOrCreateForUpdate(ctx context.Context, key entity.StockKey, now time.Time) (*entity.WarehouseStock, error) {
	insert := `
		INSERT INTO warehouse_stock (warehouse_id, product_id, variant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (warehouse_id, product_id, variant_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, key.WarehouseID, key.ProductID, key.VariantID, now); err != nil {
		return nil, wrapErr("create warehouse stock", err)
	}
	s, err := r.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("warehouse stock %v: %w", key, domain.ErrNotFound)
	}
	return s, nil
}

// Update persiste cantidades, umbrales y costos.
func (r *WarehouseStockRepo) Update(ctx context.Context, s *entity.WarehouseStock) error {
	query := `
		UPDATE warehouse_stock SET
			quantity_on_hand = $2, quantity_reserved = $3, min_level = $4, max_level = $5, reorder_point = $6,
			average_cost = $7, last_cost = $8, last_movement_at = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, s.ID, s.OnHand, s.Reserved, s.MinLevel, s.MaxLevel, s.ReorderPoint,
		s.AverageCost, s.LastCost, s.LastMovementAt, s.UpdatedAt)
	if err != nil {
		return wrapErr("update warehouse stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	s.Recompute()
	return nil
}

// ListByProduct proyecciones del producto en todas las bodegas.
func (r *WarehouseStockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.WarehouseStock, error) {
	query := `SELECT ` + stockColumns + ` FROM warehouse_stock WHERE product_id = $1 ORDER BY warehouse_id, variant_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, wrapErr("list stock by product", err)
	}
	defer rows.Close()
	list := []*entity.WarehouseStock{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, wrapErr("scan warehouse stock", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListLowStock proyecciones con existencia <= punto de reorden, ordenadas por nombre de producto.
func (r *WarehouseStockRepo) ListLowStock(ctx context.Context, warehouseID string) ([]repository.LowStockItem, error) {
	query := `
		SELECT ws.id, ws.warehouse_id, ws.product_id, ws.variant_id, ws.quantity_on_hand, ws.quantity_reserved,
			ws.min_level, ws.max_level, ws.reorder_point, ws.average_cost, ws.last_cost, ws.last_movement_at,
			ws.created_at, ws.updated_at, p.sku, p.name
		FROM warehouse_stock ws
		JOIN products p ON p.id = ws.product_id
		WHERE ws.quantity_on_hand <= ws.reorder_point
		  AND ($1 = '' OR ws.warehouse_id::text = $1)
		ORDER BY p.name, ws.warehouse_id, ws.variant_id`
	rows, err := r.q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, wrapErr("list low stock", err)
	}
	defer rows.Close()
	list := []repository.LowStockItem{}
	for rows.Next() {
		var it repository.LowStockItem
		s := &it.Stock
		if err := rows.Scan(&s.ID, &s.WarehouseID, &s.ProductID, &s.VariantID, &s.OnHand, &s.Reserved,
			&s.MinLevel, &s.MaxLevel, &s.ReorderPoint, &s.AverageCost, &s.LastCost, &s.LastMovementAt,
			&s.CreatedAt, &s.UpdatedAt, &it.SKU, &it.ProductName); err != nil {
			return nil, wrapErr("scan low stock", err)
		}
		s.Recompute()
		list = append(list, it)
	}
	return list, rows.Err()
}

// SumOnHand total en existencia del producto en todas las bodegas.
func (r *WarehouseStockRepo) SumOnHand(ctx context.Context, productID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity_on_hand), 0) FROM warehouse_stock WHERE product_id = $1`, productID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, wrapErr("sum on hand", err)
	}
	return total, nil
}

func scanStock(row pgx.Row) (*entity.WarehouseStock, error) {
	var s entity.WarehouseStock
	if err := row.Scan(&s.ID, &s.WarehouseID, &s.ProductID, &s.VariantID, &s.OnHand, &s.Reserved,
		&s.MinLevel, &s.MaxLevel, &s.ReorderPoint, &s.AverageCost, &s.LastCost, &s.LastMovementAt,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Recompute()
	return &s, nil
}
