package entity

import "strings"

// MovementType código de tipo de movimiento. Conjunto cerrado: los valores fuera de la
// taxonomía se rechazan en el borde con ParseMovementType.
type MovementType string

const (
	MovementTypeStockIn       MovementType = "STOCK_IN"
	MovementTypeReturn        MovementType = "RETURN"
	MovementTypeAdjustmentIn  MovementType = "ADJUSTMENT_IN"
	MovementTypeTransferIn    MovementType = "TRANSFER_IN"
	MovementTypeStockOut      MovementType = "STOCK_OUT"
	MovementTypeSale          MovementType = "SALE"
	MovementTypeAdjustmentOut MovementType = "ADJUSTMENT_OUT"
	MovementTypeTransferOut   MovementType = "TRANSFER_OUT"
	MovementTypeTransfer      MovementType = "TRANSFER" // cantidad con signo propio
	MovementTypeReserve       MovementType = "RESERVE"
	MovementTypeUnreserve     MovementType = "UNRESERVE"

	// Alias históricos.
	MovementTypeIn         MovementType = "IN"
	MovementTypeOut        MovementType = "OUT"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// MovementEffect categoría de efecto de un tipo de movimiento sobre la proyección.
type MovementEffect int

const (
	EffectUnknown MovementEffect = iota
	EffectIncrease
	EffectDecrease
	EffectSigned
	EffectReserve
	EffectUnreserve
)

func (e MovementEffect) String() string {
	switch e {
	case EffectIncrease:
		return "increase"
	case EffectDecrease:
		return "decrease"
	case EffectSigned:
		return "signed"
	case EffectReserve:
		return "reserve"
	case EffectUnreserve:
		return "unreserve"
	}
	return "unknown"
}

// Effect devuelve el efecto del tipo; EffectUnknown si no pertenece a la taxonomía.
func (t MovementType) Effect() MovementEffect {
	switch t {
	case MovementTypeStockIn, MovementTypeReturn, MovementTypeAdjustmentIn, MovementTypeTransferIn,
		MovementTypeIn, MovementTypeAdjustment:
		return EffectIncrease
	case MovementTypeStockOut, MovementTypeSale, MovementTypeAdjustmentOut, MovementTypeTransferOut,
		MovementTypeOut:
		return EffectDecrease
	case MovementTypeTransfer:
		return EffectSigned
	case MovementTypeReserve:
		return EffectReserve
	case MovementTypeUnreserve:
		return EffectUnreserve
	}
	return EffectUnknown
}

// Valid indica si el tipo pertenece a la taxonomía.
func (t MovementType) Valid() bool { return t.Effect() != EffectUnknown }

// ChangesOnHand es verdadero para los tipos que mueven la cantidad física (no reservas).
func (t MovementType) ChangesOnHand() bool {
	switch t.Effect() {
	case EffectIncrease, EffectDecrease, EffectSigned:
		return true
	}
	return false
}

func (t MovementType) String() string { return string(t) }

// ParseMovementType normaliza (mayúsculas, sin espacios) y valida un código recibido del exterior.
func ParseMovementType(s string) (MovementType, bool) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", false
	}
	return t, true
}

// MovementTypes lista la taxonomía completa (canónicos y alias).
func MovementTypes() []MovementType {
	return []MovementType{
		MovementTypeStockIn, MovementTypeReturn, MovementTypeAdjustmentIn, MovementTypeTransferIn,
		MovementTypeStockOut, MovementTypeSale, MovementTypeAdjustmentOut, MovementTypeTransferOut,
		MovementTypeTransfer, MovementTypeReserve, MovementTypeUnreserve,
		MovementTypeIn, MovementTypeOut, MovementTypeAdjustment,
	}
}
