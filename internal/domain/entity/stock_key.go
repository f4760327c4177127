package entity

// StockKey clave única de una proyección de stock (bodega × producto × variante).
type StockKey struct {
	WarehouseID string
	ProductID   string
	VariantID   string
}

// Less orden total usado para tomar bloqueos de filas siempre en la misma secuencia.
func (k StockKey) Less(o StockKey) bool {
	if k.WarehouseID != o.WarehouseID {
		return k.WarehouseID < o.WarehouseID
	}
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.VariantID < o.VariantID
}
