package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter criterios de consulta del ledger. Campos vacíos/nil no filtran.
// From y To son inclusivos; el llamador decide la granularidad.
type MovementFilter struct {
	ProductID     string
	WarehouseID   string
	Type          entity.MovementType
	ReferenceType string
	ReferenceID   string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// MovementRepository puerto de persistencia del ledger (solo inserción y lectura).
type MovementRepository interface {
	// Create inserta el registro y asigna ID.
	Create(ctx context.Context, movement *entity.MovementRecord) error
	// List devuelve los registros que cumplen el filtro, del más reciente al más antiguo.
	List(ctx context.Context, filter MovementFilter) ([]*entity.MovementRecord, error)
}
