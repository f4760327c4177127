package inventory_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newStock(onHand, reserved int64) *entity.WarehouseStock {
	s := entity.NewWarehouseStock(entity.StockKey{WarehouseID: "w1", ProductID: "p1"}, time.Now())
	s.OnHand = d(onHand)
	s.Reserved = d(reserved)
	s.Recompute()
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplyMovement por efecto
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_EntradaActualizaCostoPromedio(t *testing.T) {
	s := newStock(10, 0)
	s.AverageCost = d(100)
	cost := d(200)

	require.NoError(t, inventory.ApplyMovement(s, entity.MovementTypeStockIn, d(10), inventory.ApplyOptions{UnitCost: &cost}))

	assert.True(t, s.OnHand.Equal(d(20)))
	assert.True(t, s.AverageCost.Equal(d(150)), "promedio ponderado (10×100 + 10×200) / 20")
	assert.True(t, s.LastCost.Equal(d(200)))
	assert.True(t, s.Available.Equal(d(20)))
}

func TestApplyMovement_SalidaRechazaSinDisponible(t *testing.T) {
	s := newStock(10, 4)

	err := inventory.ApplyMovement(s, entity.MovementTypeSale, d(7), inventory.ApplyOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var shortage *domain.StockShortageError
	require.True(t, errors.As(err, &shortage))
	assert.True(t, shortage.Available.Equal(d(6)))
	assert.True(t, s.OnHand.Equal(d(10)), "la proyección no cambia si la regla falla")
	assert.True(t, s.Reserved.Equal(d(4)))
}

func TestApplyMovement_SalidaConsumeReservado(t *testing.T) {
	s := newStock(50, 30)

	require.NoError(t, inventory.ApplyMovement(s, entity.MovementTypeTransferOut, d(30), inventory.ApplyOptions{ConsumeReserved: true}))

	assert.True(t, s.OnHand.Equal(d(20)))
	assert.True(t, s.Reserved.IsZero())
	assert.True(t, s.Available.Equal(d(20)))
}

func TestApplyMovement_ConsumoMayorAReservadoFalla(t *testing.T) {
	s := newStock(50, 10)
	err := inventory.ApplyMovement(s, entity.MovementTypeTransferOut, d(20), inventory.ApplyOptions{ConsumeReserved: true})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, s.OnHand.Equal(d(50)))
}

func TestApplyMovement_ReservaYLiberacion(t *testing.T) {
	s := newStock(100, 0)

	require.NoError(t, inventory.ApplyMovement(s, entity.MovementTypeReserve, d(20), inventory.ApplyOptions{}))
	assert.True(t, s.Reserved.Equal(d(20)))
	assert.True(t, s.Available.Equal(d(80)))

	err := inventory.ApplyMovement(s, entity.MovementTypeReserve, d(81), inventory.ApplyOptions{})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "no se reserva más de lo disponible")

	require.NoError(t, inventory.ApplyMovement(s, entity.MovementTypeUnreserve, d(50), inventory.ApplyOptions{}))
	assert.True(t, s.Reserved.IsZero(), "la liberación tiene piso en cero")
	assert.True(t, s.OnHand.Equal(d(100)))
}

func TestApplyMovement_TransferConSigno(t *testing.T) {
	s := newStock(10, 0)
	require.NoError(t, inventory.ApplyMovement(s, entity.MovementTypeTransfer, d(5), inventory.ApplyOptions{}))
	assert.True(t, s.OnHand.Equal(d(15)))
	require.NoError(t, inventory.ApplyMovement(s, entity.MovementTypeTransfer, d(-15), inventory.ApplyOptions{}))
	assert.True(t, s.OnHand.IsZero())
	assert.ErrorIs(t, inventory.ApplyMovement(s, entity.MovementTypeTransfer, d(-1), inventory.ApplyOptions{}), domain.ErrInsufficientStock)
	assert.ErrorIs(t, inventory.ApplyMovement(s, entity.MovementTypeTransfer, decimal.Zero, inventory.ApplyOptions{}), domain.ErrInvalidInput)
}

func TestApplyMovement_CantidadYTipoInvalidos(t *testing.T) {
	s := newStock(10, 0)
	assert.ErrorIs(t, inventory.ApplyMovement(s, entity.MovementTypeStockIn, d(0), inventory.ApplyOptions{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ApplyMovement(s, entity.MovementTypeStockIn, d(-3), inventory.ApplyOptions{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ApplyMovement(s, entity.MovementType("X"), d(1), inventory.ApplyOptions{}), domain.ErrInvalidMovementType)
}

func TestSignedDelta(t *testing.T) {
	assert.True(t, inventory.SignedDelta(entity.MovementTypeSale, d(3)).Equal(d(-3)))
	assert.True(t, inventory.SignedDelta(entity.MovementTypeReturn, d(3)).Equal(d(3)))
	assert.True(t, inventory.SignedDelta(entity.MovementTypeUnreserve, d(3)).Equal(d(-3)))
	assert.True(t, inventory.SignedDelta(entity.MovementTypeTransfer, d(-3)).Equal(d(-3)))
}

func TestApplyToProduct_NoQuedaNegativo(t *testing.T) {
	p := &entity.Product{ID: "p1", StockQuantity: d(5)}

	require.NoError(t, inventory.ApplyToProduct(p, entity.MovementTypeReserve, d(100)))
	assert.True(t, p.StockQuantity.Equal(d(5)), "las reservas no tocan el contador del producto")

	err := inventory.ApplyToProduct(p, entity.MovementTypeSale, d(6))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, p.StockQuantity.Equal(d(5)))

	require.NoError(t, inventory.ApplyToProduct(p, entity.MovementTypeReturn, d(2)))
	assert.True(t, p.StockQuantity.Equal(d(7)))
}

func TestApplyToProductFloored_PisoEnCero(t *testing.T) {
	p := &entity.Product{ID: "p1", StockQuantity: d(5)}

	drift := inventory.ApplyToProductFloored(p, entity.MovementTypeSale, d(8))
	assert.True(t, p.StockQuantity.IsZero())
	assert.True(t, drift.Equal(d(3)), "lo que no se pudo descontar")

	drift = inventory.ApplyToProductFloored(p, entity.MovementTypeStockIn, d(4))
	assert.True(t, drift.IsZero())
	assert.True(t, p.StockQuantity.Equal(d(4)))

	assert.True(t, inventory.ApplyToProductFloored(p, entity.MovementTypeReserve, d(100)).IsZero())
	assert.True(t, p.StockQuantity.Equal(d(4)))
}

func TestValidateQuantity_CuatroDecimales(t *testing.T) {
	assert.NoError(t, inventory.ValidateQuantity(entity.MovementTypeStockIn, decimal.RequireFromString("0.0001")))
	assert.NoError(t, inventory.ValidateQuantity(entity.MovementTypeStockIn, decimal.RequireFromString("2.500000")))
	assert.ErrorIs(t, inventory.ValidateQuantity(entity.MovementTypeStockIn, decimal.RequireFromString("0.00004")), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateQuantity(entity.MovementTypeTransfer, decimal.RequireFromString("-1.23456")), domain.ErrInvalidInput)
}

// Secuencias aleatorias de movimientos: después de cada escritura aceptada las invariantes
// se mantienen; una escritura rechazada deja la proyección igual.
func TestApplyMovement_InvariantesEnSecuenciasAleatorias(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	types := entity.MovementTypes()

	for run := 0; run < 200; run++ {
		s := newStock(0, 0)
		for step := 0; step < 50; step++ {
			mt := types[rng.Intn(len(types))]
			qty := d(int64(rng.Intn(20) + 1))
			if mt.Effect() == entity.EffectSigned && rng.Intn(2) == 0 {
				qty = qty.Neg()
			}
			before := *s
			err := inventory.ApplyMovement(s, mt, qty, inventory.ApplyOptions{ConsumeReserved: mt.Effect() == entity.EffectDecrease && rng.Intn(3) == 0})
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
				require.True(t, before.OnHand.Equal(s.OnHand) && before.Reserved.Equal(s.Reserved),
					"escritura rechazada no modifica la proyección")
			}
			require.True(t, inventory.CheckInvariants(s), "run %d paso %d (%s %s): onHand=%s reserved=%s",
				run, step, mt, qty, s.OnHand, s.Reserved)
		}
	}
}
