package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReplenishmentUseCase convierte las proyecciones bajo punto de reorden en sugerencias de pedido.
type ReplenishmentUseCase struct {
	stocks repository.WarehouseStockRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(stocks repository.WarehouseStockRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{stocks: stocks}
}

// GenerateReplenishmentList devuelve cada proyección bajo reorden con la cantidad sugerida.
// Stock ideal = MaxLevel si está definido, si no ReorderPoint * 1.5.
// warehouseID vacío considera todas las bodegas.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, warehouseID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.stocks.ListLowStock(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(items))
	for _, item := range items {
		s := item.Stock
		ideal := s.ReorderPoint.Mul(factor)
		if s.MaxLevel != nil {
			ideal = *s.MaxLevel
		}
		// lo reservado ya está comprometido, se repone sobre lo disponible
		suggested := ideal.Sub(s.Available)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			WarehouseID:        s.WarehouseID,
			ProductID:          s.ProductID,
			VariantID:          s.VariantID,
			SKU:                item.SKU,
			ProductName:        item.ProductName,
			OnHand:             s.OnHand,
			Available:          s.Available,
			ReorderPoint:       s.ReorderPoint,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           s.AverageCost,
			EstimatedOrderCost: suggested.Mul(s.AverageCost),
		})
	}

	// Mayor déficit primero; empate por nombre para un orden estable
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.ReorderPoint.Sub(a.Available)
		defB := b.ReorderPoint.Sub(b.Available)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.ProductName < b.ProductName
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
