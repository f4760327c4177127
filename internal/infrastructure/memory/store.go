// Package memory implementa los repositorios y el TxRunner en memoria.
// Cada transacción trabaja sobre una copia del estado confirmado y solo la publica en el commit,
// así un error deja el estado exactamente como estaba.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

type state struct {
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	stocks     map[entity.StockKey]entity.WarehouseStock
	movements  []entity.MovementRecord
	transfers  map[int64]entity.StockTransfer
	numbers    map[string]int64 // transfer_number -> id
	daySeq     map[string]int64

	nextStockID    int64
	nextMovementID int64
	nextTransferID int64
	nextItemID     int64
}

func newState() *state {
	return &state{
		products:   map[string]entity.Product{},
		warehouses: map[string]entity.Warehouse{},
		stocks:     map[entity.StockKey]entity.WarehouseStock{},
		transfers:  map[int64]entity.StockTransfer{},
		numbers:    map[string]int64{},
		daySeq:     map[string]int64{},
	}
}

func (s *state) clone() *state {
	c := *s
	c.products = make(map[string]entity.Product, len(s.products))
	for k, v := range s.products {
		c.products[k] = v
	}
	c.warehouses = make(map[string]entity.Warehouse, len(s.warehouses))
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	c.stocks = make(map[entity.StockKey]entity.WarehouseStock, len(s.stocks))
	for k, v := range s.stocks {
		c.stocks[k] = v
	}
	c.movements = append([]entity.MovementRecord(nil), s.movements...)
	c.transfers = make(map[int64]entity.StockTransfer, len(s.transfers))
	for k, v := range s.transfers {
		c.transfers[k] = *v.Clone()
	}
	c.numbers = make(map[string]int64, len(s.numbers))
	for k, v := range s.numbers {
		c.numbers[k] = v
	}
	c.daySeq = make(map[string]int64, len(s.daySeq))
	for k, v := range s.daySeq {
		c.daySeq[k] = v
	}
	return &c
}

// Store estado compartido. Las transacciones se serializan con un mutex global.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// with ejecuta fn sobre el estado confirmado (operaciones fuera de transacción).
func (s *Store) with(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// Repos devuelve repositorios que operan fuera de transacción (autocommit).
func (s *Store) Repos() inventory.TxRepos {
	return reposFor(s.with)
}

func reposFor(with func(func(*state) error) error) inventory.TxRepos {
	return inventory.TxRepos{
		Movements:  &MovementRepository{with: with},
		Stocks:     &WarehouseStockRepository{with: with},
		Products:   &ProductRepository{with: with},
		Warehouses: &WarehouseRepository{with: with},
		Transfers:  &TransferRepository{with: with},
	}
}

// TxRunner implementa inventory.TxRunner sobre el Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run copia el estado, ejecuta fn sobre la copia y la publica solo si fn no retorna error.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	work := r.store.state.clone()
	repos := reposFor(func(f func(*state) error) error { return f(work) })
	if err := fn(repos); err != nil {
		return err
	}
	r.store.state = work
	return nil
}

// NumberGenerator consecutivo diario en memoria para números de traslado.
type NumberGenerator struct {
	store *Store
}

// NewNumberGenerator construye el generador.
func NewNumberGenerator(store *Store) *NumberGenerator {
	return &NumberGenerator{store: store}
}

// Next devuelve TRF-YYYYMMDD-NNNNN.
func (g *NumberGenerator) Next(_ context.Context, now time.Time) (string, error) {
	var number string
	_ = g.store.with(func(st *state) error {
		day := now.UTC().Format("20060102")
		st.daySeq[day]++
		number = domaininv.FormatTransferNumber(now, st.daySeq[day])
		return nil
	})
	return number, nil
}

// ── Semillas y lecturas directas para tests ──────────────────────────────────

// AddProduct inserta o reemplaza un producto.
func (s *Store) AddProduct(p entity.Product) {
	_ = s.with(func(st *state) error {
		st.products[p.ID] = p
		return nil
	})
}

// AddWarehouse inserta o reemplaza una bodega.
func (s *Store) AddWarehouse(w entity.Warehouse) {
	_ = s.with(func(st *state) error {
		st.warehouses[w.ID] = w
		return nil
	})
}

// PutStock inserta o reemplaza una proyección (asigna ID si no tiene).
func (s *Store) PutStock(ws entity.WarehouseStock) entity.WarehouseStock {
	_ = s.with(func(st *state) error {
		if prev, ok := st.stocks[ws.Key()]; ok && ws.ID == 0 {
			ws.ID = prev.ID
		}
		if ws.ID == 0 {
			st.nextStockID++
			ws.ID = st.nextStockID
		}
		ws.Recompute()
		st.stocks[ws.Key()] = ws
		return nil
	})
	return ws
}

// Stock lectura directa de una proyección.
func (s *Store) Stock(key entity.StockKey) (entity.WarehouseStock, bool) {
	var (
		out entity.WarehouseStock
		ok  bool
	)
	_ = s.with(func(st *state) error {
		out, ok = st.stocks[key]
		return nil
	})
	return out, ok
}

// Product lectura directa de un producto.
func (s *Store) Product(id string) (entity.Product, bool) {
	var (
		out entity.Product
		ok  bool
	)
	_ = s.with(func(st *state) error {
		out, ok = st.products[id]
		return nil
	})
	return out, ok
}

// Movements copia del ledger en orden de inserción.
func (s *Store) Movements() []entity.MovementRecord {
	var out []entity.MovementRecord
	_ = s.with(func(st *state) error {
		out = append(out, st.movements...)
		return nil
	})
	return out
}

// Transfer lectura directa de un traslado.
func (s *Store) Transfer(id int64) (entity.StockTransfer, bool) {
	var (
		out entity.StockTransfer
		ok  bool
	)
	_ = s.with(func(st *state) error {
		var t entity.StockTransfer
		t, ok = st.transfers[id]
		if ok {
			out = *t.Clone()
		}
		return nil
	})
	return out, ok
}
