package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/optica-core/internal/application/caisse"
	"github.com/jhoicas/optica-core/internal/domain/entity"
)

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":       "0,00 €",
		"25":      "25,00 €",
		"1234.5":  "1 234,50 €",
		"1000000": "1 000 000,00 €",
		"-20":     "-20,00 €",
		"-0.004":  "0,00 €",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatAmount(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateSessionReport_Cerrada(t *testing.T) {
	opened := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	closed := opened.Add(9 * time.Hour)
	actual := decimal.RequireFromString("1195")
	ecart := decimal.RequireFromString("-5")
	report := caisse.SessionReport{
		Register: &entity.CashRegister{ID: "reg-1", Name: "Caisse boutique", Kind: entity.RegisterPrincipale},
		Session: &entity.CashSession{
			ID: "s-1", RegisterID: "reg-1", Statut: entity.SessionFermee,
			OpeningBalance: decimal.RequireFromString("1000"),
			CashIn:         decimal.RequireFromString("500"),
			CashOut:        decimal.RequireFromString("300"),
			CardSales:      decimal.RequireFromString("80"),
			OpenedAt:       opened, ClosedAt: &closed, ClosedBy: "cajero-1",
			ActualBalance: &actual, Ecart: &ecart, Justification: "rendu monnaie",
		},
		Operations: []*entity.CashOperation{
			{ID: "op-1", Type: entity.OperationEncaissement, Amount: decimal.RequireFromString("500"), Means: entity.MeansEspeces, InvoiceID: "FAC-1", CreatedAt: opened.Add(time.Hour)},
			{ID: "op-2", Type: entity.OperationDecaissement, Amount: decimal.RequireFromString("300"), Means: entity.MeansEspeces, Reason: "fournitures", CreatedAt: opened.Add(2 * time.Hour)},
		},
		GeneratedAt: closed,
	}

	out, err := NewMarotoReportGenerator().GenerateSessionReport(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un PDF")
}

func TestGenerateSessionReport_ProvisionalSinOperaciones(t *testing.T) {
	report := caisse.SessionReport{
		Register:    &entity.CashRegister{ID: "reg-2", Name: "Dépenses", Kind: entity.RegisterDepenses},
		Session:     &entity.CashSession{ID: "s-2", RegisterID: "reg-2", Statut: entity.SessionOuverte, OpenedAt: time.Now()},
		Provisional: true,
		GeneratedAt: time.Now(),
	}
	out, err := NewMarotoReportGenerator().GenerateSessionReport(context.Background(), report)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
