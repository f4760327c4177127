package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

const transferColumns = `id, transfer_number, from_warehouse_id, to_warehouse_id, status, transfer_type,
	total_quantity, total_value, notes, created_by, approved_by, shipped_by, received_by, cancelled_by,
	cancel_reason, created_at, updated_at, approved_at, shipped_at, received_at, cancelled_at, version`

const transferItemColumns = `id, transfer_id, product_id, variant_id, from_stock_id, to_stock_id,
	quantity_requested, quantity_shipped, quantity_received, unit_cost`

// TransferRepo agregado stock_transfers + stock_transfer_items (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta cabecera y líneas. Número repetido → domain.ErrDuplicate.
func (r *TransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (transfer_number, from_warehouse_id, to_warehouse_id, status, transfer_type,
			total_quantity, total_value, notes, created_by, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		t.TransferNumber, t.FromWarehouseID, t.ToWarehouseID, string(t.Status), string(t.TransferType),
		t.TotalQuantity, t.TotalValue, t.Notes, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert stock transfer", err)
	}
	t.Version = 1

	itemQuery := `
		INSERT INTO stock_transfer_items (transfer_id, product_id, variant_id, from_stock_id, to_stock_id,
			quantity_requested, quantity_shipped, quantity_received, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	for i := range t.Items {
		it := &t.Items[i]
		it.TransferID = t.ID
		if err := r.q.QueryRow(ctx, itemQuery,
			it.TransferID, it.ProductID, it.VariantID, nullInt64(it.FromStockID), nullInt64(it.ToStockID),
			it.QuantityRequested, it.QuantityShipped, it.QuantityReceived, it.UnitCost,
		).Scan(&it.ID); err != nil {
			return wrapErr("insert stock transfer item", err)
		}
	}
	return nil
}

// GetByID obtiene cabecera y líneas; nil, nil si no existe.
func (r *TransferRepo) GetByID(ctx context.Context, id int64) (*entity.StockTransfer, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE); las líneas solo se tocan con la cabecera tomada.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id int64) (*entity.StockTransfer, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *TransferRepo) get(ctx context.Context, id int64, lock string) (*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers WHERE id = $1` + lock
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get stock transfer", err)
	}
	items, err := r.items(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	t.Items = items[id]
	return t, nil
}

// Update compare-and-swap sobre version; 0 filas → domain.ErrConcurrencyConflict.
func (r *TransferRepo) Update(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers SET
			status = $3, total_quantity = $4, total_value = $5, notes = $6,
			approved_by = $7, shipped_by = $8, received_by = $9, cancelled_by = $10, cancel_reason = $11,
			updated_at = $12, approved_at = $13, shipped_at = $14, received_at = $15, cancelled_at = $16,
			version = version + 1
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(ctx, query, t.ID, t.Version,
		string(t.Status), t.TotalQuantity, t.TotalValue, t.Notes,
		t.ApprovedBy, t.ShippedBy, t.ReceivedBy, t.CancelledBy, t.CancelReason,
		t.UpdatedAt, t.ApprovedAt, t.ShippedAt, t.ReceivedAt, t.CancelledAt,
	)
	if err != nil {
		return wrapErr("update stock transfer", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}

	itemQuery := `
		UPDATE stock_transfer_items SET
			from_stock_id = $2, to_stock_id = $3, quantity_shipped = $4, quantity_received = $5
		WHERE id = $1`
	for _, it := range t.Items {
		if _, err := r.q.Exec(ctx, itemQuery, it.ID,
			nullInt64(it.FromStockID), nullInt64(it.ToStockID), it.QuantityShipped, it.QuantityReceived,
		); err != nil {
			return wrapErr("update stock transfer item", err)
		}
	}
	t.Version++
	return nil
}

// List traslados filtrados, del más reciente al más antiguo, con sus líneas.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers WHERE 1=1`
	args := []any{}
	pos := 1
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, string(f.Status))
		pos++
	}
	if f.FromWarehouseID != "" {
		query += fmt.Sprintf(" AND from_warehouse_id = $%d", pos)
		args = append(args, f.FromWarehouseID)
		pos++
	}
	if f.ToWarehouseID != "" {
		query += fmt.Sprintf(" AND to_warehouse_id = $%d", pos)
		args = append(args, f.ToWarehouseID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list stock transfers", err)
	}
	list := []*entity.StockTransfer{}
	ids := []int64{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, wrapErr("scan stock transfer", err)
		}
		list = append(list, t)
		ids = append(ids, t.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		t.Items = items[t.ID]
	}
	return list, nil
}

func (r *TransferRepo) items(ctx context.Context, transferIDs []int64) (map[int64][]entity.StockTransferItem, error) {
	query := `SELECT ` + transferItemColumns + ` FROM stock_transfer_items WHERE transfer_id = ANY($1) ORDER BY id`
	rows, err := r.q.Query(ctx, query, transferIDs)
	if err != nil {
		return nil, wrapErr("list stock transfer items", err)
	}
	defer rows.Close()
	out := make(map[int64][]entity.StockTransferItem, len(transferIDs))
	for rows.Next() {
		var (
			it       entity.StockTransferItem
			from, to *int64
		)
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID, &it.VariantID, &from, &to,
			&it.QuantityRequested, &it.QuantityShipped, &it.QuantityReceived, &it.UnitCost); err != nil {
			return nil, wrapErr("scan stock transfer item", err)
		}
		if from != nil {
			it.FromStockID = *from
		}
		if to != nil {
			it.ToStockID = *to
		}
		out[it.TransferID] = append(out[it.TransferID], it)
	}
	return out, rows.Err()
}

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var (
		t             entity.StockTransfer
		status, ttype string
	)
	if err := row.Scan(&t.ID, &t.TransferNumber, &t.FromWarehouseID, &t.ToWarehouseID, &status, &ttype,
		&t.TotalQuantity, &t.TotalValue, &t.Notes, &t.CreatedBy, &t.ApprovedBy, &t.ShippedBy, &t.ReceivedBy,
		&t.CancelledBy, &t.CancelReason, &t.CreatedAt, &t.UpdatedAt, &t.ApprovedAt, &t.ShippedAt,
		&t.ReceivedAt, &t.CancelledAt, &t.Version); err != nil {
		return nil, err
	}
	t.Status = entity.TransferStatus(status)
	t.TransferType = entity.TransferType(ttype)
	return &t, nil
}

func nullInt64(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
