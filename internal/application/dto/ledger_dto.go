package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// RegisterMovementRequest entrada de un movimiento de stock fuera del protocolo de traslado
// (compra, venta, ajuste, casse, inventario, migración, devolución).
type RegisterMovementRequest struct {
	RecordID     string           `json:"record_id"`
	ProductRef   string           `json:"product_ref"`
	Designation  string           `json:"designation"`
	WarehouseID  string           `json:"warehouse_id"`
	Type         string           `json:"type"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	DocumentID   string           `json:"document_id"`
	DocumentType string           `json:"document_type"`
	Reason       string           `json:"reason"`
}

// MovementResponse entrada del libro de movimientos.
type MovementResponse struct {
	ID                     string          `json:"id"`
	Type                   string          `json:"type"`
	RecordID               string          `json:"record_id"`
	CounterpartRecordID    string          `json:"counterpart_record_id,omitempty"`
	ProductRef             string          `json:"product_ref"`
	Quantity               decimal.Decimal `json:"quantity"`
	Delta                  decimal.Decimal `json:"delta"`
	SourceWarehouseID      string          `json:"source_warehouse_id,omitempty"`
	DestinationWarehouseID string          `json:"destination_warehouse_id,omitempty"`
	TransferNumber         string          `json:"transfer_number,omitempty"`
	DocumentID             string          `json:"document_id,omitempty"`
	DocumentType           string          `json:"document_type,omitempty"`
	Reason                 string          `json:"reason,omitempty"`
	Actor                  string          `json:"actor"`
	CreatedAt              time.Time       `json:"created_at"`
}

// MovementListResponse historial paginado.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                     m.ID,
		Type:                   m.Type,
		RecordID:               m.RecordID,
		CounterpartRecordID:    m.CounterpartRecordID,
		ProductRef:             m.ProductRef,
		Quantity:               m.Quantity,
		Delta:                  m.Delta,
		SourceWarehouseID:      m.SourceWarehouseID,
		DestinationWarehouseID: m.DestinationWarehouseID,
		TransferNumber:         m.TransferNumber,
		DocumentID:             m.DocumentID,
		DocumentType:           m.DocumentType,
		Reason:                 m.Reason,
		Actor:                  m.Actor,
		CreatedAt:              m.CreatedAt,
	}
}

func ToMovementList(list []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}
