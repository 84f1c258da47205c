package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento publicados tras cada transición confirmada.
const (
	EventTransferReserved  = "transfer.reserved"
	EventTransferShipped   = "transfer.shipped"
	EventTransferReceived  = "transfer.received"
	EventTransferCancelled = "transfer.cancelled"

	EventCashSessionOpened   = "caisse.session.opened"
	EventCashOperation       = "caisse.operation.recorded"
	EventCashOperationDelete = "caisse.operation.deleted"
	EventCashTransfer        = "caisse.transfer"
	EventCashSessionClosed   = "caisse.session.closed"
)

// TransferEvent describe una transición de traslado ya confirmada en la BD.
type TransferEvent struct {
	EventID                string          `json:"event_id"`
	EventType              string          `json:"event_type"`
	TransferID             string          `json:"transfer_id"`
	TransferNumber         string          `json:"transfer_number"`
	Status                 string          `json:"status"`
	SourceRecordID         string          `json:"source_record_id"`
	DestinationRecordID    string          `json:"destination_record_id"`
	SourceWarehouseID      string          `json:"source_warehouse_id"`
	DestinationWarehouseID string          `json:"destination_warehouse_id"`
	Quantity               decimal.Decimal `json:"quantity"`
	Actor                  string          `json:"actor"`
	Timestamp              time.Time       `json:"timestamp"`
}

// CashEvent describe un cambio confirmado en una jornada de caja.
type CashEvent struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	SessionID   string          `json:"session_id"`
	RegisterID  string          `json:"register_id"`
	OperationID string          `json:"operation_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"theoretical_balance"`
	Actor       string          `json:"actor"`
	Timestamp   time.Time       `json:"timestamp"`
}

// EventPublisher publica eventos de dominio hacia cualquier mecanismo de notificación.
// Los casos de uso publican después del commit; un fallo se registra y no revierte nada.
type EventPublisher interface {
	PublishTransfer(ctx context.Context, event TransferEvent) error
	PublishCash(ctx context.Context, event CashEvent) error
}

// NopPublisher descarta los eventos.
type NopPublisher struct{}

func (NopPublisher) PublishTransfer(context.Context, TransferEvent) error { return nil }
func (NopPublisher) PublishCash(context.Context, CashEvent) error         { return nil }
