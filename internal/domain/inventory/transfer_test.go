package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestCanTransition_FlujoCompleto(t *testing.T) {
	path := []entity.TransferStatus{
		entity.TransferStatusDraft, entity.TransferStatusPending, entity.TransferStatusApproved,
		entity.TransferStatusShipped, entity.TransferStatusCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, inventory.CanTransition(path[i], path[i+1]), "%s → %s", path[i], path[i+1])
	}
	assert.False(t, inventory.CanTransition(entity.TransferStatusPending, entity.TransferStatusShipped), "no se salta la aprobación")
	assert.False(t, inventory.CanTransition(entity.TransferStatusApproved, entity.TransferStatusCompleted))
}

func TestCanTransition_CancelacionSoloDesdeNoTerminales(t *testing.T) {
	for _, s := range []entity.TransferStatus{
		entity.TransferStatusDraft, entity.TransferStatusPending, entity.TransferStatusApproved, entity.TransferStatusShipped,
	} {
		assert.True(t, inventory.CanTransition(s, entity.TransferStatusCancelled), "cancelar desde %s", s)
		assert.False(t, s.Terminal())
	}
	for _, s := range []entity.TransferStatus{entity.TransferStatusCompleted, entity.TransferStatusCancelled} {
		assert.True(t, s.Terminal())
		assert.False(t, inventory.CanTransition(s, entity.TransferStatusCancelled), "%s es terminal", s)
	}
}

func TestCheckTransition_ErrorTipado(t *testing.T) {
	tr := &entity.StockTransfer{ID: 7, Status: entity.TransferStatusCompleted}
	err := inventory.CheckTransition(tr, entity.TransferStatusCancelled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))

	var te *domain.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, int64(7), te.TransferID)
	assert.Equal(t, "COMPLETED", te.From)
	assert.Equal(t, "CANCELLED", te.To)
}

func TestValidateTransferItems(t *testing.T) {
	ok := []entity.StockTransferItem{{QuantityRequested: d(10), QuantityShipped: d(10), QuantityReceived: d(10)}}
	assert.True(t, inventory.ValidateTransferItems(ok))

	overShipped := []entity.StockTransferItem{{QuantityRequested: d(10), QuantityShipped: d(11)}}
	assert.False(t, inventory.ValidateTransferItems(overShipped))

	overReceived := []entity.StockTransferItem{{QuantityRequested: d(10), QuantityShipped: d(5), QuantityReceived: d(6)}}
	assert.False(t, inventory.ValidateTransferItems(overReceived))

	assert.False(t, inventory.ValidateTransferItems([]entity.StockTransferItem{{QuantityRequested: d(0)}}))
}

func TestFormatTransferNumber(t *testing.T) {
	day := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("COT", -5*3600))
	assert.Equal(t, "TRF-20240310-00042", inventory.FormatTransferNumber(day, 42), "el día se toma en UTC")
	assert.Equal(t, "TRF-20240310-123456", inventory.FormatTransferNumber(day, 123456))
}
