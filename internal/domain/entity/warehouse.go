package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario (multi-bodega).
// Una bodega desactivada no recibe entradas ni reservas nuevas, solo salidas y el cierre de
// traslados ya despachados; sus proyecciones nunca se borran.
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
