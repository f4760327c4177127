package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// transitions tabla de la máquina de estados del traslado.
var transitions = map[entity.TransferStatus][]entity.TransferStatus{
	entity.TransferStatusDraft:    {entity.TransferStatusPending, entity.TransferStatusCancelled},
	entity.TransferStatusPending:  {entity.TransferStatusApproved, entity.TransferStatusCancelled},
	entity.TransferStatusApproved: {entity.TransferStatusShipped, entity.TransferStatusCancelled},
	entity.TransferStatusShipped:  {entity.TransferStatusCompleted, entity.TransferStatusCancelled},
}

// CanTransition indica si la máquina de estados permite from → to.
func CanTransition(from, to entity.TransferStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition devuelve *domain.TransitionError si el traslado no puede pasar a `to`.
func CheckTransition(t *entity.StockTransfer, to entity.TransferStatus) error {
	if !CanTransition(t.Status, to) {
		return &domain.TransitionError{TransferID: t.ID, From: string(t.Status), To: string(to)}
	}
	return nil
}

// ValidateTransferItems verifica las invariantes de cantidades de cada línea.
func ValidateTransferItems(items []entity.StockTransferItem) bool {
	for _, it := range items {
		if !it.QuantityRequested.IsPositive() ||
			it.QuantityShipped.IsNegative() || it.QuantityReceived.IsNegative() ||
			it.QuantityShipped.GreaterThan(it.QuantityRequested) ||
			it.QuantityReceived.GreaterThan(it.QuantityShipped) {
			return false
		}
	}
	return true
}
