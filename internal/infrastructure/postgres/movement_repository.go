package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, correlation_id, product_id, variant_id, warehouse_id, movement_type, quantity,
	unit_cost, reference_type, reference_id, batch_number, expiry_date, created_by, created_at, notes`

// MovementRepo ledger sobre PostgreSQL (usable con pool o tx). Solo INSERT y SELECT.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste el registro; el id lo asigna la secuencia bigserial.
func (r *MovementRepo) Create(ctx context.Context, m *entity.MovementRecord) error {
	query := `
		INSERT INTO inventory_movements (correlation_id, product_id, variant_id, warehouse_id, movement_type, quantity,
			unit_cost, reference_type, reference_id, batch_number, expiry_date, created_by, created_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.CorrelationID, m.ProductID, m.VariantID, nullString(m.WarehouseID), string(m.Type), m.Quantity,
		m.UnitCost, m.ReferenceType, m.ReferenceID, m.BatchNumber, m.ExpiryDate, m.CreatedBy, m.CreatedAt, m.Notes,
	).Scan(&m.ID)
	if err != nil {
		return wrapErr("create inventory movement", err)
	}
	return nil
}

// List arma el WHERE con los filtros presentes; orden del más reciente al más antiguo.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE 1=1`
	args := []any{}
	pos := 1
	add := func(cond string, v any) {
		query += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, v)
		pos++
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != "" {
		add("warehouse_id = $%d", f.WarehouseID)
	}
	if f.Type != "" {
		add("movement_type = $%d", string(f.Type))
	}
	if f.ReferenceType != "" {
		add("reference_type = $%d", f.ReferenceType)
	}
	if f.ReferenceID != "" {
		add("reference_id = $%d", f.ReferenceID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list movements", err)
	}
	defer rows.Close()
	list := []*entity.MovementRecord{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.MovementRecord, error) {
	var (
		m           entity.MovementRecord
		warehouseID *string
		mt          string
	)
	err := row.Scan(&m.ID, &m.CorrelationID, &m.ProductID, &m.VariantID, &warehouseID, &mt, &m.Quantity,
		&m.UnitCost, &m.ReferenceType, &m.ReferenceID, &m.BatchNumber, &m.ExpiryDate, &m.CreatedBy, &m.CreatedAt, &m.Notes)
	if err != nil {
		return nil, wrapErr("scan movement", err)
	}
	m.WarehouseID = derefString(warehouseID)
	m.Type = entity.MovementType(mt)
	return &m, nil
}
