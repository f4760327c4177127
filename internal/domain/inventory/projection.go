package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ApplyOptions modifica la aplicación de un movimiento sobre la proyección.
type ApplyOptions struct {
	// UnitCost de la entrada; si es nil el costo promedio no cambia.
	UnitCost *decimal.Decimal
	// ConsumeReserved hace que una salida descuente también lo reservado
	// (despacho de una reserva previa, p. ej. TRANSFER_OUT al completar un traslado).
	ConsumeReserved bool
}

// SignedDelta devuelve la variación con signo que el tipo produce para una cantidad.
// Para TRANSFER la cantidad ya trae su signo.
func SignedDelta(t entity.MovementType, qty decimal.Decimal) decimal.Decimal {
	switch t.Effect() {
	case entity.EffectDecrease, entity.EffectUnreserve:
		return qty.Abs().Neg()
	case entity.EffectSigned:
		return qty
	}
	return qty.Abs()
}

// QuantityScale decimales que admite una cantidad (columnas NUMERIC(18,4)).
const QuantityScale = 4

// FitsScale: q no tiene más de QuantityScale decimales significativos ("1.50000" sí, "0.00004" no).
func FitsScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}

// ValidateQuantity exige magnitud positiva, salvo TRANSFER que solo exige distinto de cero.
// En ambos casos la cantidad debe caber en QuantityScale decimales.
func ValidateQuantity(t entity.MovementType, qty decimal.Decimal) error {
	if !t.Valid() {
		return domain.ErrInvalidMovementType
	}
	if !FitsScale(qty) {
		return domain.ErrInvalidInput
	}
	if t.Effect() == entity.EffectSigned {
		if qty.IsZero() {
			return domain.ErrInvalidInput
		}
		return nil
	}
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	return nil
}

// ApplyMovement aplica el efecto del tipo sobre la proyección. Si alguna regla falla la
// proyección queda sin cambios.
//   - increase:  OnHand += q (actualiza costo promedio y último costo si hay UnitCost)
//   - decrease:  OnHand -= q; rechaza si Available < q
//   - reserve:   Reserved += q; rechaza si Available < q
//   - unreserve: Reserved -= q, con piso en cero
//   - signed:    q > 0 como increase, q < 0 como decrease de |q|
func ApplyMovement(s *entity.WarehouseStock, t entity.MovementType, qty decimal.Decimal, opts ApplyOptions) error {
	if err := ValidateQuantity(t, qty); err != nil {
		return err
	}
	effect := t.Effect()
	if effect == entity.EffectSigned {
		if qty.IsPositive() {
			effect = entity.EffectIncrease
		} else {
			effect = entity.EffectDecrease
			qty = qty.Neg()
		}
	}

	s.Recompute()
	switch effect {
	case entity.EffectIncrease:
		if opts.UnitCost != nil {
			s.AverageCost = WeightedAverageCost(s.OnHand, s.AverageCost, qty, *opts.UnitCost)
			s.LastCost = *opts.UnitCost
		}
		s.OnHand = s.OnHand.Add(qty)
	case entity.EffectDecrease:
		if opts.ConsumeReserved {
			if s.Reserved.LessThan(qty) || s.OnHand.LessThan(qty) {
				return shortage(s, qty, s.Reserved)
			}
			s.Reserved = s.Reserved.Sub(qty)
		} else if s.Available.LessThan(qty) {
			return shortage(s, qty, s.Available)
		}
		s.OnHand = s.OnHand.Sub(qty)
	case entity.EffectReserve:
		if s.Available.LessThan(qty) {
			return shortage(s, qty, s.Available)
		}
		s.Reserved = s.Reserved.Add(qty)
	case entity.EffectUnreserve:
		s.Reserved = s.Reserved.Sub(qty)
		if s.Reserved.IsNegative() {
			s.Reserved = decimal.Zero
		}
	}
	s.Recompute()
	return nil
}

// ApplyToProduct aplica el delta al contador legado del producto. Nunca lo deja negativo.
func ApplyToProduct(p *entity.Product, t entity.MovementType, qty decimal.Decimal) error {
	if !t.ChangesOnHand() {
		return nil
	}
	next := p.StockQuantity.Add(SignedDelta(t, qty))
	if next.IsNegative() {
		return &domain.StockShortageError{
			ProductID: p.ID,
			Requested: SignedDelta(t, qty).Abs(),
			Available: p.StockQuantity,
		}
	}
	p.StockQuantity = next
	return nil
}

// ApplyToProductFloored aplica el delta con piso en cero y devuelve la parte que no se pudo
// descontar. Se usa cuando la proyección de bodega ya validó la salida.
func ApplyToProductFloored(p *entity.Product, t entity.MovementType, qty decimal.Decimal) decimal.Decimal {
	if !t.ChangesOnHand() {
		return decimal.Zero
	}
	next := p.StockQuantity.Add(SignedDelta(t, qty))
	if next.IsNegative() {
		p.StockQuantity = decimal.Zero
		return next.Neg()
	}
	p.StockQuantity = next
	return decimal.Zero
}

// CheckInvariants verifica OnHand >= 0, Reserved >= 0, Reserved <= OnHand y Available coherente.
func CheckInvariants(s *entity.WarehouseStock) bool {
	return !s.OnHand.IsNegative() &&
		!s.Reserved.IsNegative() &&
		s.Reserved.LessThanOrEqual(s.OnHand) &&
		s.Available.Equal(s.OnHand.Sub(s.Reserved))
}

func shortage(s *entity.WarehouseStock, requested, available decimal.Decimal) error {
	return &domain.StockShortageError{
		WarehouseID: s.WarehouseID,
		ProductID:   s.ProductID,
		VariantID:   s.VariantID,
		Requested:   requested,
		Available:   available,
	}
}
