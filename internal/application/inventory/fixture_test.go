package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: store en memoria con dos bodegas y dos productos
// ──────────────────────────────────────────────────────────────────────────────

const (
	whMain   = "w1"
	whBranch = "w2"
	whClosed = "w-closed"
	prodA    = "prod-a"
	prodB    = "prod-b"
	testUser = "user-1"
)

type fixture struct {
	store     *memory.Store
	ledger    *inventory.LedgerUseCase
	stock     *inventory.StockUseCase
	transfers *inventory.TransferUseCase
	events    *recordingPublisher
	metrics   *recordingMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	now := time.Now().UTC()
	store.AddWarehouse(entity.Warehouse{ID: whMain, Name: "Principal", Active: true, CreatedAt: now})
	store.AddWarehouse(entity.Warehouse{ID: whBranch, Name: "Sucursal Norte", Active: true, CreatedAt: now})
	store.AddWarehouse(entity.Warehouse{ID: whClosed, Name: "Cerrada", Active: false, CreatedAt: now})
	store.AddProduct(entity.Product{ID: prodA, SKU: "A-001", Name: "Arandela", UnitMeasure: "UND", Cost: dec(10), StockQuantity: decimal.Zero})
	store.AddProduct(entity.Product{ID: prodB, SKU: "B-001", Name: "Bisagra", UnitMeasure: "UND", Cost: dec(25), StockQuantity: decimal.Zero})

	txRunner := memory.NewTxRunner(store)
	repos := store.Repos()
	events := &recordingPublisher{}
	metrics := &recordingMetrics{}
	return &fixture{
		store:     store,
		ledger:    inventory.NewLedgerUseCase(txRunner, repos.Movements, metrics, nil),
		stock:     inventory.NewStockUseCase(txRunner, repos.Stocks, repos.Products, metrics, nil),
		transfers: inventory.NewTransferUseCase(txRunner, repos.Transfers, repos.Stocks, memory.NewNumberGenerator(store), events, metrics, nil),
		events:    events,
		metrics:   metrics,
	}
}

// seed deja onHand en la proyección y suma lo mismo al contador del producto.
func (f *fixture) seed(t *testing.T, warehouseID, productID string, onHand int64) {
	t.Helper()
	_, err := f.ledger.Record(context.Background(), inventory.MovementInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        entity.MovementTypeStockIn,
		Quantity:    dec(onHand),
		UserID:      testUser,
	})
	require.NoError(t, err)
}

func (f *fixture) projection(warehouseID, productID string) entity.WarehouseStock {
	s, _ := f.store.Stock(entity.StockKey{WarehouseID: warehouseID, ProductID: productID})
	return s
}

func (f *fixture) createTransfer(t *testing.T, lines ...inventory.TransferLine) *entity.StockTransfer {
	t.Helper()
	tr, err := f.transfers.Create(context.Background(), inventory.CreateTransferInput{
		FromWarehouseID: whMain,
		ToWarehouseID:   whBranch,
		Items:           lines,
		UserID:          testUser,
	})
	require.NoError(t, err)
	return tr
}

func line(productID string, qty int64) inventory.TransferLine {
	return inventory.TransferLine{ProductID: productID, Quantity: dec(qty)}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// recordingPublisher guarda los eventos; failWith simula caída del bus.
type recordingPublisher struct {
	mu       sync.Mutex
	events   []inventory.TransferEvent
	failWith error
}

func (p *recordingPublisher) PublishTransferEvent(_ context.Context, ev inventory.TransferEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type recordingMetrics struct {
	mu          sync.Mutex
	movements   map[entity.MovementType]int
	transitions map[string]int
	failures    map[string]int
}

func (m *recordingMetrics) MovementRecorded(t entity.MovementType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.movements == nil {
		m.movements = map[entity.MovementType]int{}
	}
	m.movements[t]++
}

func (m *recordingMetrics) TransferTransition(action string, err error, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transitions == nil {
		m.transitions = map[string]int{}
		m.failures = map[string]int{}
	}
	if err != nil {
		m.failures[action]++
		return
	}
	m.transitions[action]++
}

var errBusDown = errors.New("broker no disponible")
