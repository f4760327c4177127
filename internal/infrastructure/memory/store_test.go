package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func newTransfer(number string) *entity.StockTransfer {
	now := time.Now().UTC()
	return &entity.StockTransfer{
		TransferNumber:  number,
		FromWarehouseID: "w1",
		ToWarehouseID:   "w2",
		Status:          entity.TransferStatusPending,
		TransferType:    entity.TransferTypeInternal,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items: []entity.StockTransferItem{
			{ProductID: "p1", QuantityRequested: decimal.NewFromInt(2)},
		},
	}
}

func TestTxRunner_ErrorDescartaTodo(t *testing.T) {
	store := memory.NewStore()
	store.AddProduct(entity.Product{ID: "p1", StockQuantity: decimal.NewFromInt(5)})
	boom := errors.New("boom")

	err := memory.NewTxRunner(store).Run(context.Background(), func(repos inventory.TxRepos) error {
		if err := repos.Products.UpdateStockQuantity(context.Background(), "p1", decimal.NewFromInt(99)); err != nil {
			return err
		}
		if err := repos.Movements.Create(context.Background(), &entity.MovementRecord{ProductID: "p1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, _ := store.Product("p1")
	assert.True(t, p.StockQuantity.Equal(decimal.NewFromInt(5)))
	assert.Empty(t, store.Movements())
}

func TestTxRunner_CommitPublicaCambios(t *testing.T) {
	store := memory.NewStore()
	err := memory.NewTxRunner(store).Run(context.Background(), func(repos inventory.TxRepos) error {
		return repos.Transfers.Create(context.Background(), newTransfer("TRF-20240310-00001"))
	})
	require.NoError(t, err)

	tr, ok := store.Transfer(1)
	require.True(t, ok)
	assert.Equal(t, int64(1), tr.Version)
	assert.Equal(t, int64(1), tr.Items[0].TransferID)
}

func TestTransferRepository_NumeroDuplicado(t *testing.T) {
	store := memory.NewStore()
	repo := store.Repos().Transfers
	require.NoError(t, repo.Create(context.Background(), newTransfer("TRF-20240310-00001")))

	err := repo.Create(context.Background(), newTransfer("TRF-20240310-00001"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestTransferRepository_CompareAndSwap(t *testing.T) {
	store := memory.NewStore()
	repo := store.Repos().Transfers
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newTransfer("TRF-20240310-00001")))

	a, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	b, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)

	a.Status = entity.TransferStatusApproved
	require.NoError(t, repo.Update(ctx, a))
	assert.Equal(t, int64(2), a.Version)

	b.Status = entity.TransferStatusCancelled
	assert.ErrorIs(t, repo.Update(ctx, b), domain.ErrConcurrencyConflict)

	stored, _ := store.Transfer(1)
	assert.Equal(t, entity.TransferStatusApproved, stored.Status)
}

func TestTransferRepository_CopiasIndependientes(t *testing.T) {
	store := memory.NewStore()
	repo := store.Repos().Transfers
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newTransfer("TRF-20240310-00001")))

	got, _ := repo.GetByID(ctx, 1)
	got.Items[0].QuantityShipped = decimal.NewFromInt(2)

	again, _ := repo.GetByID(ctx, 1)
	assert.True(t, again.Items[0].QuantityShipped.IsZero(), "modificar el resultado no toca el store")
}

func TestNumberGenerator_ReiniciaPorDia(t *testing.T) {
	gen := memory.NewNumberGenerator(memory.NewStore())
	day := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	n1, _ := gen.Next(context.Background(), day)
	n2, _ := gen.Next(context.Background(), day)
	n3, _ := gen.Next(context.Background(), day.AddDate(0, 0, 1))
	assert.Equal(t, "TRF-20240310-00001", n1)
	assert.Equal(t, "TRF-20240310-00002", n2)
	assert.Equal(t, "TRF-20240311-00001", n3)
}

func TestWarehouseStockRepository_LowStockYSuma(t *testing.T) {
	store := memory.NewStore()
	store.AddProduct(entity.Product{ID: "p1", Name: "Tornillo"})
	store.PutStock(entity.WarehouseStock{WarehouseID: "w1", ProductID: "p1", OnHand: decimal.NewFromInt(2), ReorderPoint: decimal.NewFromInt(5)})
	store.PutStock(entity.WarehouseStock{WarehouseID: "w2", ProductID: "p1", OnHand: decimal.NewFromInt(9), ReorderPoint: decimal.NewFromInt(5)})
	repo := store.Repos().Stocks

	low, err := repo.ListLowStock(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "w1", low[0].Stock.WarehouseID)
	assert.Equal(t, "Tornillo", low[0].ProductName)

	sum, err := repo.SumOnHand(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(11)))
}
