package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// TransferNumberSequence genera números de traslado con la secuencia stock_transfer_number_seq.
// Se usa cuando no hay Redis configurado.
type TransferNumberSequence struct {
	q Querier
}

// NewTransferNumberSequence construye el generador.
func NewTransferNumberSequence(q Querier) *TransferNumberSequence {
	return &TransferNumberSequence{q: q}
}

// Next devuelve TRF-YYYYMMDD-NNNNN.
func (g *TransferNumberSequence) Next(ctx context.Context, now time.Time) (string, error) {
	var n int64
	if err := g.q.QueryRow(ctx, `SELECT nextval('stock_transfer_number_seq')`).Scan(&n); err != nil {
		return "", wrapErr("nextval transfer number", err)
	}
	return inventory.FormatTransferNumber(now, n), nil
}
