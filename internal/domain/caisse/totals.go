// Package caisse contiene las reglas puras de la jornada de caja.
package caisse

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// DefaultVarianceTolerance es la tolerancia de arqueo cuando la configuración no define otra.
var DefaultVarianceTolerance = decimal.NewFromFloat(0.01)

// Apply suma (sign=+1) o revierte (sign=-1) una operación en los totales de la jornada.
func Apply(s *entity.CashSession, op *entity.CashOperation, sign int64) {
	amount := op.Amount.Mul(decimal.NewFromInt(sign))

	if op.Type == entity.OperationEncaissement {
		switch op.Means {
		case entity.MeansEspeces:
			s.CashIn = s.CashIn.Add(amount)
		case entity.MeansCarte:
			s.CardSales = s.CardSales.Add(amount)
		case entity.MeansCheque:
			s.ChequeSales = s.ChequeSales.Add(amount)
		case entity.MeansVirement:
			s.WireSales = s.WireSales.Add(amount)
		}
		if op.Classification == entity.ClassificationInterne {
			s.InternalIn = s.InternalIn.Add(amount)
		}
		return
	}

	if op.Means == entity.MeansEspeces {
		s.CashOut = s.CashOut.Add(amount)
	}
	if op.Classification == entity.ClassificationInterne {
		s.InternalOut = s.InternalOut.Add(amount)
	} else {
		s.Expenses = s.Expenses.Add(amount)
	}
}

// Ecart devuelve actual - teórico.
func Ecart(s *entity.CashSession, actual decimal.Decimal) decimal.Decimal {
	return actual.Sub(s.TheoreticalBalance())
}

// NeedsJustification indica si el ecart supera la tolerancia.
func NeedsJustification(ecart, tolerance decimal.Decimal) bool {
	return ecart.Abs().GreaterThan(tolerance)
}

// ValidOperationType valida el tipo de operación.
func ValidOperationType(t string) bool {
	return t == entity.OperationEncaissement || t == entity.OperationDecaissement
}

// ValidMeans valida el medio de pago.
func ValidMeans(m string) bool {
	switch m {
	case entity.MeansEspeces, entity.MeansCarte, entity.MeansCheque, entity.MeansVirement:
		return true
	}
	return false
}

// ValidClassification valida la clasificación contable.
func ValidClassification(c string) bool {
	return c == entity.ClassificationComptable || c == entity.ClassificationInterne
}
