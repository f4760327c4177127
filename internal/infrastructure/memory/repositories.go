package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type withFunc func(func(*state) error) error

// ── Ledger ────────────────────────────────────────────────────────────────────

// MovementRepository implementa repository.MovementRepository.
type MovementRepository struct {
	with withFunc
}

// Create agrega el registro y asigna ID.
func (r *MovementRepository) Create(_ context.Context, m *entity.MovementRecord) error {
	return r.with(func(st *state) error {
		st.nextMovementID++
		m.ID = st.nextMovementID
		st.movements = append(st.movements, *m)
		return nil
	})
}

// List filtra y ordena del más reciente al más antiguo.
func (r *MovementRepository) List(_ context.Context, f repository.MovementFilter) ([]*entity.MovementRecord, error) {
	var out []*entity.MovementRecord
	err := r.with(func(st *state) error {
		for i := range st.movements {
			m := st.movements[i]
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.ReferenceType != "" && m.ReferenceType != f.ReferenceType {
				continue
			}
			if f.ReferenceID != "" && m.ReferenceID != f.ReferenceID {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			out = append(out, &m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

// ── Proyección ────────────────────────────────────────────────────────────────

// WarehouseStockRepository implementa repository.WarehouseStockRepository.
type WarehouseStockRepository struct {
	with withFunc
}

// Get devuelve nil, nil si no existe.
func (r *WarehouseStockRepository) Get(_ context.Context, key entity.StockKey) (*entity.WarehouseStock, error) {
	var out *entity.WarehouseStock
	err := r.with(func(st *state) error {
		if s, ok := st.stocks[key]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a Get: el TxRunner ya serializa las transacciones.
func (r *WarehouseStockRepository) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.WarehouseStock, error) {
	return r.Get(ctx, key)
}

// GetOrCreateForUpdate crea la fila en cero si no existe.
func (r *WarehouseStockRepository) GetOrCreateForUpdate(_ context.Context, key entity.StockKey, now time.Time) (*entity.WarehouseStock, error) {
	var out entity.WarehouseStock
	err := r.with(func(st *state) error {
		s, ok := st.stocks[key]
		if !ok {
			s = *entity.NewWarehouseStock(key, now)
			st.nextStockID++
			s.ID = st.nextStockID
			st.stocks[key] = s
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update reemplaza la fila; ErrNotFound si no existe.
func (r *WarehouseStockRepository) Update(_ context.Context, s *entity.WarehouseStock) error {
	return r.with(func(st *state) error {
		prev, ok := st.stocks[s.Key()]
		if !ok {
			return domain.ErrNotFound
		}
		c := *s
		c.ID = prev.ID
		c.CreatedAt = prev.CreatedAt
		c.Recompute()
		st.stocks[s.Key()] = c
		return nil
	})
}

// ListByProduct proyecciones del producto ordenadas por bodega.
func (r *WarehouseStockRepository) ListByProduct(_ context.Context, productID string) ([]*entity.WarehouseStock, error) {
	var out []*entity.WarehouseStock
	err := r.with(func(st *state) error {
		for _, s := range st.stocks {
			if s.ProductID == productID {
				s := s
				out = append(out, &s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out, err
}

// ListLowStock OnHand <= ReorderPoint, ordenado por nombre de producto.
func (r *WarehouseStockRepository) ListLowStock(_ context.Context, warehouseID string) ([]repository.LowStockItem, error) {
	var out []repository.LowStockItem
	err := r.with(func(st *state) error {
		for _, s := range st.stocks {
			if warehouseID != "" && s.WarehouseID != warehouseID {
				continue
			}
			if s.OnHand.GreaterThan(s.ReorderPoint) {
				continue
			}
			p := st.products[s.ProductID]
			out = append(out, repository.LowStockItem{Stock: s, SKU: p.SKU, ProductName: p.Name})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductName != out[j].ProductName {
			return out[i].ProductName < out[j].ProductName
		}
		return out[i].Stock.Key().Less(out[j].Stock.Key())
	})
	return out, err
}

// SumOnHand suma OnHand del producto en todas las bodegas.
func (r *WarehouseStockRepository) SumOnHand(_ context.Context, productID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.with(func(st *state) error {
		for _, s := range st.stocks {
			if s.ProductID == productID {
				total = total.Add(s.OnHand)
			}
		}
		return nil
	})
	return total, err
}

// ── Producto y bodega ─────────────────────────────────────────────────────────

// ProductRepository implementa repository.ProductRepository.
type ProductRepository struct {
	with withFunc
}

// GetByID devuelve nil, nil si no existe.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// UpdateStockQuantity actualiza el contador legado.
func (r *ProductRepository) UpdateStockQuantity(_ context.Context, productID string, qty decimal.Decimal) error {
	return r.with(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.StockQuantity = qty
		st.products[productID] = p
		return nil
	})
}

// WarehouseRepository implementa repository.WarehouseRepository.
type WarehouseRepository struct {
	with withFunc
}

// GetByID devuelve nil, nil si no existe.
func (r *WarehouseRepository) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.with(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
		return nil
	})
	return out, err
}

// ── Traslados ─────────────────────────────────────────────────────────────────

// TransferRepository implementa repository.TransferRepository.
type TransferRepository struct {
	with withFunc
}

// Create asigna IDs y Version=1; ErrDuplicate si el número ya existe.
func (r *TransferRepository) Create(_ context.Context, t *entity.StockTransfer) error {
	return r.with(func(st *state) error {
		if _, dup := st.numbers[t.TransferNumber]; dup {
			return domain.ErrDuplicate
		}
		st.nextTransferID++
		t.ID = st.nextTransferID
		t.Version = 1
		for i := range t.Items {
			st.nextItemID++
			t.Items[i].ID = st.nextItemID
			t.Items[i].TransferID = t.ID
		}
		st.transfers[t.ID] = *t.Clone()
		st.numbers[t.TransferNumber] = t.ID
		return nil
	})
}

// GetByID devuelve nil, nil si no existe.
func (r *TransferRepository) GetByID(_ context.Context, id int64) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := r.with(func(st *state) error {
		if t, ok := st.transfers[id]; ok {
			out = t.Clone()
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID.
func (r *TransferRepository) GetForUpdate(ctx context.Context, id int64) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, id)
}

// Update compare-and-swap sobre Version.
func (r *TransferRepository) Update(_ context.Context, t *entity.StockTransfer) error {
	return r.with(func(st *state) error {
		prev, ok := st.transfers[t.ID]
		if !ok {
			return domain.ErrTransferNotFound
		}
		if prev.Version != t.Version {
			return domain.ErrConcurrencyConflict
		}
		t.Version++
		st.transfers[t.ID] = *t.Clone()
		return nil
	})
}

// List filtra y ordena del más reciente al más antiguo.
func (r *TransferRepository) List(_ context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, error) {
	var out []*entity.StockTransfer
	err := r.with(func(st *state) error {
		for _, t := range st.transfers {
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if f.FromWarehouseID != "" && t.FromWarehouseID != f.FromWarehouseID {
				continue
			}
			if f.ToWarehouseID != "" && t.ToWarehouseID != f.ToWarehouseID {
				continue
			}
			out = append(out, t.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
