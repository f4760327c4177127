package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestMovementType_EfectoPorCodigo(t *testing.T) {
	cases := map[entity.MovementType]entity.MovementEffect{
		entity.MovementTypeStockIn:       entity.EffectIncrease,
		entity.MovementTypeReturn:        entity.EffectIncrease,
		entity.MovementTypeAdjustmentIn:  entity.EffectIncrease,
		entity.MovementTypeTransferIn:    entity.EffectIncrease,
		entity.MovementTypeIn:            entity.EffectIncrease,
		entity.MovementTypeAdjustment:    entity.EffectIncrease,
		entity.MovementTypeStockOut:      entity.EffectDecrease,
		entity.MovementTypeSale:          entity.EffectDecrease,
		entity.MovementTypeAdjustmentOut: entity.EffectDecrease,
		entity.MovementTypeTransferOut:   entity.EffectDecrease,
		entity.MovementTypeOut:           entity.EffectDecrease,
		entity.MovementTypeTransfer:      entity.EffectSigned,
		entity.MovementTypeReserve:       entity.EffectReserve,
		entity.MovementTypeUnreserve:     entity.EffectUnreserve,
	}
	for mt, want := range cases {
		assert.Equal(t, want, mt.Effect(), "efecto de %s", mt)
		assert.True(t, mt.Valid())
	}
	assert.Len(t, entity.MovementTypes(), len(cases), "la taxonomía lista todos los códigos")
}

func TestParseMovementType_NormalizaYRechazaDesconocidos(t *testing.T) {
	mt, ok := entity.ParseMovementType("  sale ")
	assert.True(t, ok)
	assert.Equal(t, entity.MovementTypeSale, mt)

	for _, s := range []string{"", "VENTA", "STOCKIN", "reserve_all"} {
		_, ok := entity.ParseMovementType(s)
		assert.False(t, ok, "%q no pertenece a la taxonomía", s)
	}
	assert.Equal(t, entity.EffectUnknown, entity.MovementType("FOO").Effect())
}

func TestMovementType_ChangesOnHand(t *testing.T) {
	assert.True(t, entity.MovementTypeSale.ChangesOnHand())
	assert.True(t, entity.MovementTypeTransfer.ChangesOnHand())
	assert.False(t, entity.MovementTypeReserve.ChangesOnHand())
	assert.False(t, entity.MovementTypeUnreserve.ChangesOnHand())
}

func TestStockKey_OrdenTotal(t *testing.T) {
	a := entity.StockKey{WarehouseID: "w1", ProductID: "p2"}
	b := entity.StockKey{WarehouseID: "w1", ProductID: "p2", VariantID: "v1"}
	c := entity.StockKey{WarehouseID: "w2", ProductID: "p1"}
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
	assert.False(t, a.Less(a))
}
