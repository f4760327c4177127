package inventory

import "github.com/shopspring/decimal"

// CostScale decimales con los que se guarda el costo (NUMERIC(18,4)).
const CostScale = 4

// WeightedAverageCost costo promedio de la proyección después de una entrada valorizada:
//
//	(onHand × avgCost + qtyIn × unitCostIn) / (onHand + qtyIn)
//
// Sin existencia previa el resultado es el costo de la entrada. Se redondea a CostScale
// para que el valor en memoria coincida con lo que devuelve la BD.
func WeightedAverageCost(onHand, avgCost, qtyIn, unitCostIn decimal.Decimal) decimal.Decimal {
	if !onHand.IsPositive() {
		if !qtyIn.IsPositive() {
			return decimal.Zero
		}
		return unitCostIn.Round(CostScale)
	}
	total := onHand.Add(qtyIn)
	if !total.IsPositive() {
		return decimal.Zero
	}
	value := onHand.Mul(avgCost).Add(qtyIn.Mul(unitCostIn))
	return value.DivRound(total, CostScale)
}
