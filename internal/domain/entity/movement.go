package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementEntreeAchat     = "ENTREE_ACHAT"
	MovementSortieVente     = "SORTIE_VENTE"
	MovementTransfertInit   = "TRANSFERT_INIT"
	MovementTransfertSortie = "TRANSFERT_SORTIE"
	MovementTransfertEntree = "TRANSFERT_ENTREE"
	MovementReception       = "RECEPTION"
	MovementTransfertAnnule = "TRANSFERT_ANNULE"
	MovementAjustement      = "AJUSTEMENT"
	MovementCasse           = "CASSE"
	MovementInventaire      = "INVENTAIRE"
	MovementMigration       = "MIGRATION"
	MovementRetourClient    = "RETOUR_CLIENT"
)

// StockMovement es una entrada inmutable del libro de movimientos.
// Delta es el efecto con signo sobre QuantiteActuelle de RecordID; la suma de Delta
// de un registro debe coincidir con su cantidad actual.
type StockMovement struct {
	ID                     string
	Type                   string
	RecordID               string
	CounterpartRecordID    string
	ProductRef             string
	Quantity               decimal.Decimal
	Delta                  decimal.Decimal
	SourceWarehouseID      string
	DestinationWarehouseID string
	TransferNumber         string
	DocumentID             string
	DocumentType           string
	Reason                 string
	Actor                  string
	CreatedAt              time.Time
}
