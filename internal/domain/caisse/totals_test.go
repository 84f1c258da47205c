package caisse_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/optica-core/internal/domain/caisse"
	"github.com/jhoicas/optica-core/internal/domain/entity"
)

func money(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestApply_SaldoTeorico(t *testing.T) {
	s := &entity.CashSession{OpeningBalance: money("1000")}

	ops := []*entity.CashOperation{
		{Type: entity.OperationEncaissement, Means: entity.MeansEspeces, Classification: entity.ClassificationComptable, Amount: money("500")},
		{Type: entity.OperationEncaissement, Means: entity.MeansCarte, Classification: entity.ClassificationComptable, Amount: money("80")},
		{Type: entity.OperationDecaissement, Means: entity.MeansEspeces, Classification: entity.ClassificationComptable, Amount: money("200")},
		{Type: entity.OperationDecaissement, Means: entity.MeansEspeces, Classification: entity.ClassificationInterne, Amount: money("100")},
	}
	for _, op := range ops {
		caisse.Apply(s, op, 1)
	}

	assert.True(t, s.TheoreticalBalance().Equal(money("1200")), "la tarjeta no entra al cajón")
	assert.True(t, s.CardSales.Equal(money("80")))
	assert.True(t, s.Expenses.Equal(money("200")))
	assert.True(t, s.InternalOut.Equal(money("100")))

	caisse.Apply(s, ops[2], -1)
	assert.True(t, s.TheoreticalBalance().Equal(money("1400")), "revertir un egreso devuelve el saldo")
	assert.True(t, s.Expenses.IsZero())
}

func TestNeedsJustification(t *testing.T) {
	tol := caisse.DefaultVarianceTolerance
	assert.False(t, caisse.NeedsJustification(money("0.01"), tol))
	assert.False(t, caisse.NeedsJustification(money("-0.01"), tol))
	assert.True(t, caisse.NeedsJustification(money("0.02"), tol))
	assert.True(t, caisse.NeedsJustification(money("-5"), tol))
}
