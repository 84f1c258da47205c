package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de operación de caja.
const (
	OperationEncaissement = "ENCAISSEMENT"
	OperationDecaissement = "DECAISSEMENT"
)

// Clasificación contable.
const (
	ClassificationComptable = "COMPTABLE"
	ClassificationInterne   = "INTERNE"
)

// Medios de pago.
const (
	MeansEspeces  = "ESPECES"
	MeansCarte    = "CARTE"
	MeansCheque   = "CHEQUE"
	MeansVirement = "VIREMENT"
)

// CashOperation es una línea del libro de caja de una jornada.
// TransferID enlaza las dos mitades de un traslado entre cajas.
type CashOperation struct {
	ID             string
	SessionID      string
	Type           string
	Classification string
	Amount         decimal.Decimal // siempre positivo; el signo lo da Type
	Means          string
	InvoiceID      string
	Reason         string
	TransferID     string
	CreatedBy      string
	CreatedAt      time.Time
}
