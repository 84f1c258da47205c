package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer es un traslado entre dos registros de inventario de almacenes distintos.
// Status usa los valores de transfer.State (RESERVED, SHIPPED, RECEIVED, CANCELLED).
type Transfer struct {
	ID                     string
	Number                 string
	SourceRecordID         string
	DestinationRecordID    string
	SourceWarehouseID      string
	DestinationWarehouseID string
	ProductRef             string
	Quantity               decimal.Decimal
	Status                 string
	Reason                 string
	InitiatedBy            string
	ShippedBy              string
	ReceivedBy             string
	CancelledBy            string
	CreatedAt              time.Time
	ShippedAt              *time.Time
	ReceivedAt             *time.Time
	CancelledAt            *time.Time
	UpdatedAt              time.Time
}
