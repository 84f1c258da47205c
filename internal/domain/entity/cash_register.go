package entity

import "time"

// Tipos de caja.
const (
	RegisterPrincipale = "PRINCIPALE"
	RegisterDepenses   = "DEPENSES"
	RegisterAnnexe     = "ANNEXE"
)

// CashRegister es una caja registradora de un centro.
type CashRegister struct {
	ID        string
	CenterID  string
	Name      string
	Kind      string
	Active    bool
	CreatedAt time.Time
}
