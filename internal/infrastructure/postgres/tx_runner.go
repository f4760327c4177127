package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// maxTxAttempts intentos ante deadlock o fallo de serialización.
const maxTxAttempts = 3

// TxRunner abre una transacción READ COMMITTED por operación del ledger.
// Los bloqueos de fila (FOR UPDATE) se toman en orden canónico desde la capa de aplicación;
// si aun así Postgres detecta un deadlock, la unidad completa se repite.
type TxRunner struct {
	pool    *pgxpool.Pool
	opts    pgx.TxOptions
	backoff time.Duration
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{
		pool:    pool,
		opts:    pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite},
		backoff: 20 * time.Millisecond,
	}
}

// Run ejecuta fn con repos atados a la tx. Commit si fn devuelve nil; en otro caso Rollback
// y el error de fn sin envolver (los errores de dominio llegan intactos al caso de uso).
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, r.opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos arma el juego de repositorios sobre un Querier (pool para lecturas, tx dentro de Run).
func NewRepos(q Querier) inventory.TxRepos {
	return inventory.TxRepos{
		Movements:  NewMovementRepository(q),
		Stocks:     NewWarehouseStockRepository(q),
		Products:   NewProductRepository(q),
		Warehouses: NewWarehouseRepository(q),
		Transfers:  NewTransferRepository(q),
	}
}
