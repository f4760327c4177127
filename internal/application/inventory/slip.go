package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// SlipLine línea de la guía de despacho con los datos del producto resueltos.
type SlipLine struct {
	SKU         string
	ProductName string
	VariantID   string
	UnitMeasure string
	Requested   decimal.Decimal
	Shipped     decimal.Decimal
	Received    decimal.Decimal
	UnitCost    decimal.Decimal
}

// SlipData datos de la guía de despacho de un traslado.
type SlipData struct {
	Transfer      *entity.StockTransfer
	FromWarehouse entity.Warehouse
	ToWarehouse   entity.Warehouse
	Lines         []SlipLine
}

// SlipGenerator genera el documento (PDF) de la guía de despacho.
type SlipGenerator interface {
	GenerateTransferSlip(ctx context.Context, data SlipData) ([]byte, error)
}

// Slip arma la guía de despacho del traslado con nombres de bodegas y productos.
func (uc *TransferUseCase) Slip(ctx context.Context, id int64, gen SlipGenerator) ([]byte, error) {
	var data SlipData
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		t, err := repos.Transfers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrTransferNotFound
		}
		data.Transfer = t
		from, err := repos.Warehouses.GetByID(ctx, t.FromWarehouseID)
		if err != nil {
			return err
		}
		to, err := repos.Warehouses.GetByID(ctx, t.ToWarehouseID)
		if err != nil {
			return err
		}
		if from == nil || to == nil {
			return domain.ErrWarehouseNotFound
		}
		data.FromWarehouse, data.ToWarehouse = *from, *to
		for _, it := range t.Items {
			line := SlipLine{
				VariantID: it.VariantID,
				Requested: it.QuantityRequested,
				Shipped:   it.QuantityShipped,
				Received:  it.QuantityReceived,
				UnitCost:  it.UnitCost,
			}
			p, err := repos.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p != nil {
				line.SKU, line.ProductName, line.UnitMeasure = p.SKU, p.Name, p.UnitMeasure
			} else {
				line.ProductName = it.ProductID
			}
			data.Lines = append(data.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return gen.GenerateTransferSlip(ctx, data)
}
