package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// WeightedAverageCost es el costo unitario de la fila tras una entrada de inQty unidades a inCost.
//
//	((onHand * costo) + (inQty * inCost)) / (onHand + inQty)
//
// Una fila sin existencias (o negativa tras un ajuste) toma el costo de la entrada.
// Las unidades reservadas por traslados siguen en on-hand y cuentan en el promedio.
func WeightedAverageCost(rec *entity.InventoryRecord, inQty, inCost decimal.Decimal) decimal.Decimal {
	if !inQty.IsPositive() {
		return rec.UnitCost
	}
	if !rec.QuantiteActuelle.IsPositive() {
		return inCost.Round(4)
	}
	num := rec.QuantiteActuelle.Mul(rec.UnitCost).Add(inQty.Mul(inCost))
	return num.Div(rec.QuantiteActuelle.Add(inQty)).Round(4)
}
