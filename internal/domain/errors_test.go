package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestAvailabilityError_EsStockInsuficiente(t *testing.T) {
	err := fmt.Errorf("aprobar: %w", &domain.AvailabilityError{Shortages: []domain.StockShortageError{
		{WarehouseID: "w1", ProductID: "a", Requested: decimal.NewFromInt(5), Available: decimal.NewFromInt(3)},
		{WarehouseID: "w1", ProductID: "b", VariantID: "rojo", Requested: decimal.NewFromInt(2), Available: decimal.Zero},
	}})

	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var ae *domain.AvailabilityError
	assert.True(t, errors.As(err, &ae))
	assert.Len(t, ae.Shortages, 2)
	assert.Contains(t, err.Error(), "w1:b/rojo")
}

func TestTransitionError_EsTransicionInvalida(t *testing.T) {
	err := &domain.TransitionError{TransferID: 1, From: "COMPLETED", To: "CANCELLED"}
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
	assert.False(t, errors.Is(err, domain.ErrInsufficientStock))
}
