package http

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func movementDTO(m *entity.MovementRecord) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		CorrelationID: m.CorrelationID,
		ProductID:     m.ProductID,
		VariantID:     m.VariantID,
		WarehouseID:   m.WarehouseID,
		Type:          m.Type.String(),
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		BatchNumber:   m.BatchNumber,
		ExpiryDate:    m.ExpiryDate,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		Notes:         m.Notes,
	}
}

func stockDTO(s *entity.WarehouseStock) dto.StockResponse {
	return dto.StockResponse{
		ID:             s.ID,
		WarehouseID:    s.WarehouseID,
		ProductID:      s.ProductID,
		VariantID:      s.VariantID,
		OnHand:         s.OnHand,
		Reserved:       s.Reserved,
		Available:      s.OnHand.Sub(s.Reserved),
		MinLevel:       s.MinLevel,
		MaxLevel:       s.MaxLevel,
		ReorderPoint:   s.ReorderPoint,
		AverageCost:    s.AverageCost,
		LastCost:       s.LastCost,
		LastMovementAt: s.LastMovementAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func lowStockDTO(items []repository.LowStockItem) []dto.LowStockResponse {
	out := make([]dto.LowStockResponse, 0, len(items))
	for i := range items {
		out = append(out, dto.LowStockResponse{
			StockResponse: stockDTO(&items[i].Stock),
			SKU:           items[i].SKU,
			ProductName:   items[i].ProductName,
		})
	}
	return out
}

func reconciliationDTO(r *inventory.Reconciliation) dto.ReconciliationResponse {
	return dto.ReconciliationResponse{
		ProductID:       r.ProductID,
		ProductCounter:  r.ProductCounter,
		ProjectionTotal: r.ProjectionTotal,
		Difference:      r.Difference,
		Consistent:      r.Consistent,
	}
}

func transferDTO(t *entity.StockTransfer) dto.TransferResponse {
	out := dto.TransferResponse{
		ID:              t.ID,
		TransferNumber:  t.TransferNumber,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Status:          string(t.Status),
		TransferType:    string(t.TransferType),
		TotalQuantity:   t.TotalQuantity,
		TotalValue:      t.TotalValue,
		Notes:           t.Notes,
		CreatedBy:       t.CreatedBy,
		ApprovedBy:      t.ApprovedBy,
		ShippedBy:       t.ShippedBy,
		ReceivedBy:      t.ReceivedBy,
		CancelledBy:     t.CancelledBy,
		CancelReason:    t.CancelReason,
		CreatedAt:       t.CreatedAt,
		ApprovedAt:      t.ApprovedAt,
		ShippedAt:       t.ShippedAt,
		ReceivedAt:      t.ReceivedAt,
		CancelledAt:     t.CancelledAt,
		Version:         t.Version,
		Items:           make([]dto.TransferItemResponse, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, dto.TransferItemResponse{
			ID:                it.ID,
			ProductID:         it.ProductID,
			VariantID:         it.VariantID,
			FromStockID:       it.FromStockID,
			ToStockID:         it.ToStockID,
			QuantityRequested: it.QuantityRequested,
			QuantityShipped:   it.QuantityShipped,
			QuantityReceived:  it.QuantityReceived,
			UnitCost:          it.UnitCost,
		})
	}
	return out
}

func shortagesDTO(in []domain.StockShortageError) []dto.ShortageDTO {
	out := make([]dto.ShortageDTO, 0, len(in))
	for _, s := range in {
		out = append(out, dto.ShortageDTO{
			WarehouseID: s.WarehouseID,
			ProductID:   s.ProductID,
			VariantID:   s.VariantID,
			Requested:   s.Requested,
			Available:   s.Available,
		})
	}
	return out
}

func transferLines(in []dto.TransferLineRequest) []inventory.TransferLine {
	out := make([]inventory.TransferLine, 0, len(in))
	for _, l := range in {
		out = append(out, inventory.TransferLine{ProductID: l.ProductID, VariantID: l.VariantID, Quantity: l.Quantity})
	}
	return out
}
