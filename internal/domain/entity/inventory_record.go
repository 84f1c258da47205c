package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un registro de inventario.
const (
	StatutDisponible = "DISPONIBLE"
	StatutReserve    = "RESERVE"
	StatutEnTransit  = "EN_TRANSIT"
	StatutEpuise     = "EPUISE"
)

// InventoryRecord es la fila física de un producto en un almacén.
// Dos almacenes con el mismo producto tienen dos filas distintas que comparten ProductRef.
type InventoryRecord struct {
	ID               string
	ProductRef       string
	Designation      string
	WarehouseID      string
	QuantiteActuelle decimal.Decimal // on-hand, nunca negativo
	Statut           string
	UnitCost         decimal.Decimal // costo promedio ponderado
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
