package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/domain/entity"
	inv "github.com/jhoicas/optica-core/internal/domain/inventory"
)

// InitiateTransferRequest entrada para reservar un traslado.
// Se indica destination_record_id o destination_warehouse_id (se crea la fila si no existe).
type InitiateTransferRequest struct {
	SourceRecordID         string          `json:"source_record_id"`
	DestinationRecordID    string          `json:"destination_record_id"`
	DestinationWarehouseID string          `json:"destination_warehouse_id"`
	Quantity               decimal.Decimal `json:"quantity"`
	Reason                 string          `json:"reason"`
}

// CancelRequest motivo opcional de anulación.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// BulkRequest lista de identificadores de traslado.
type BulkRequest struct {
	TransferIDs []string `json:"transfer_ids"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID                     string          `json:"id"`
	Number                 string          `json:"number"`
	SourceRecordID         string          `json:"source_record_id"`
	DestinationRecordID    string          `json:"destination_record_id"`
	SourceWarehouseID      string          `json:"source_warehouse_id"`
	DestinationWarehouseID string          `json:"destination_warehouse_id"`
	ProductRef             string          `json:"product_ref"`
	Quantity               decimal.Decimal `json:"quantity"`
	Status                 string          `json:"status"`
	Reason                 string          `json:"reason,omitempty"`
	InitiatedBy            string          `json:"initiated_by"`
	ShippedBy              string          `json:"shipped_by,omitempty"`
	ReceivedBy             string          `json:"received_by,omitempty"`
	CancelledBy            string          `json:"cancelled_by,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	ShippedAt              *time.Time      `json:"shipped_at,omitempty"`
	ReceivedAt             *time.Time      `json:"received_at,omitempty"`
	CancelledAt            *time.Time      `json:"cancelled_at,omitempty"`
}

// ActiveTransfersResponse traslados en curso de un almacén.
type ActiveTransfersResponse struct {
	WarehouseID string             `json:"warehouse_id"`
	Incoming    []TransferResponse `json:"incoming"`
	Outgoing    []TransferResponse `json:"outgoing"`
}

// RecordResponse vista de disponibilidad de un registro de inventario.
type RecordResponse struct {
	ID               string             `json:"id"`
	ProductRef       string             `json:"product_ref"`
	Designation      string             `json:"designation"`
	WarehouseID      string             `json:"warehouse_id"`
	QuantiteActuelle decimal.Decimal    `json:"quantite_actuelle"`
	Reserved         decimal.Decimal    `json:"reserved"`
	Available        decimal.Decimal    `json:"available"`
	Statut           string             `json:"statut"`
	UnitCost         decimal.Decimal    `json:"unit_cost"`
	PendingIncoming  *TransferResponse  `json:"pending_incoming,omitempty"`
	PendingOutgoing  []TransferResponse `json:"pending_outgoing"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func ToTransferResponse(t *entity.Transfer) TransferResponse {
	return TransferResponse{
		ID:                     t.ID,
		Number:                 t.Number,
		SourceRecordID:         t.SourceRecordID,
		DestinationRecordID:    t.DestinationRecordID,
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		ProductRef:             t.ProductRef,
		Quantity:               t.Quantity,
		Status:                 t.Status,
		Reason:                 t.Reason,
		InitiatedBy:            t.InitiatedBy,
		ShippedBy:              t.ShippedBy,
		ReceivedBy:             t.ReceivedBy,
		CancelledBy:            t.CancelledBy,
		CreatedAt:              t.CreatedAt,
		ShippedAt:              t.ShippedAt,
		ReceivedAt:             t.ReceivedAt,
		CancelledAt:            t.CancelledAt,
	}
}

func ToTransferList(list []*entity.Transfer) []TransferResponse {
	out := make([]TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, ToTransferResponse(t))
	}
	return out
}

func ToRecordResponse(v *inv.RecordView) RecordResponse {
	r := v.Record
	out := RecordResponse{
		ID:               r.ID,
		ProductRef:       r.ProductRef,
		Designation:      r.Designation,
		WarehouseID:      r.WarehouseID,
		QuantiteActuelle: r.QuantiteActuelle,
		Reserved:         v.Reserved,
		Available:        v.Available,
		Statut:           r.Statut,
		UnitCost:         r.UnitCost,
		PendingOutgoing:  ToTransferList(v.PendingOutgoing),
		UpdatedAt:        r.UpdatedAt,
	}
	if v.PendingIncoming != nil {
		in := ToTransferResponse(v.PendingIncoming)
		out.PendingIncoming = &in
	}
	return out
}
