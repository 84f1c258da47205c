package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una jornada de caja. FERMEE es terminal.
const (
	SessionOuverte = "OUVERTE"
	SessionFermee  = "FERMEE"
)

// CashSession es la jornada (journée) de una caja: apertura, operaciones y cierre con arqueo.
type CashSession struct {
	ID             string
	RegisterID     string
	Statut         string
	OpeningBalance decimal.Decimal
	OpenedAt       time.Time
	OpenedBy       string

	// Totales acumulados por categoría.
	CashIn      decimal.Decimal // encaissements en espèces
	CashOut     decimal.Decimal // décaissements en espèces
	CardSales   decimal.Decimal
	ChequeSales decimal.Decimal
	WireSales   decimal.Decimal
	InternalIn  decimal.Decimal
	InternalOut decimal.Decimal
	Expenses    decimal.Decimal

	ActualBalance *decimal.Decimal
	Ecart         *decimal.Decimal
	Justification string
	ClosedAt      *time.Time
	ClosedBy      string
	UpdatedAt     time.Time
}

// TheoreticalBalance devuelve el efectivo esperado en caja: apertura + entradas - salidas en espèces.
func (s *CashSession) TheoreticalBalance() decimal.Decimal {
	return s.OpeningBalance.Add(s.CashIn).Sub(s.CashOut)
}

// IsOpen indica si la jornada admite operaciones.
func (s *CashSession) IsOpen() bool {
	return s.Statut == SessionOuverte
}
