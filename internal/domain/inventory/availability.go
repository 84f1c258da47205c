package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/domain/entity"
	"github.com/jhoicas/optica-core/internal/domain/transfer"
)

// RecordView es la vista de disponibilidad de un registro: on-hand, reservado y traslados pendientes.
type RecordView struct {
	Record          *entity.InventoryRecord
	Reserved        decimal.Decimal
	Available       decimal.Decimal
	PendingIncoming *entity.Transfer
	PendingOutgoing []*entity.Transfer
}

// ReservedQuantity suma los traslados salientes RESERVED del registro, excluyendo exceptID si no es vacío.
// Un traslado SHIPPED ya descontó su cantidad de on-hand al expedirse y no vuelve a restarse.
func ReservedQuantity(recordID string, outgoing []*entity.Transfer, exceptID string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range outgoing {
		if t.SourceRecordID != recordID || (exceptID != "" && t.ID == exceptID) {
			continue
		}
		if transfer.State(t.Status) == transfer.Reserved {
			total = total.Add(t.Quantity)
		}
	}
	return total
}

// Available devuelve lo que puede prometerse todavía: on-hand menos reservas activas.
func Available(record *entity.InventoryRecord, outgoing []*entity.Transfer) decimal.Decimal {
	avail := record.QuantiteActuelle.Sub(ReservedQuantity(record.ID, outgoing, ""))
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}

// CanReserve verifica on-hand >= cantidad + suma de otras reservas activas.
func CanReserve(record *entity.InventoryRecord, outgoing []*entity.Transfer, quantity decimal.Decimal) bool {
	needed := quantity.Add(ReservedQuantity(record.ID, outgoing, ""))
	return record.QuantiteActuelle.GreaterThanOrEqual(needed)
}

// DeriveStatut calcula el statut persistido del registro a partir de sus traslados activos.
func DeriveStatut(record *entity.InventoryRecord, outgoing []*entity.Transfer, incoming *entity.Transfer) string {
	if incoming != nil && transfer.State(incoming.Status) == transfer.Shipped {
		return entity.StatutEnTransit
	}
	reserved := ReservedQuantity(record.ID, outgoing, "")
	if record.QuantiteActuelle.IsZero() && reserved.IsZero() {
		return entity.StatutEpuise
	}
	if reserved.IsPositive() && !record.QuantiteActuelle.GreaterThan(reserved) {
		return entity.StatutReserve
	}
	return entity.StatutDisponible
}

// BuildView arma la vista de un registro.
func BuildView(record *entity.InventoryRecord, outgoing []*entity.Transfer, incoming *entity.Transfer) RecordView {
	active := make([]*entity.Transfer, 0, len(outgoing))
	for _, t := range outgoing {
		if transfer.State(t.Status).Active() {
			active = append(active, t)
		}
	}
	return RecordView{
		Record:          record,
		Reserved:        ReservedQuantity(record.ID, active, ""),
		Available:       Available(record, active),
		PendingIncoming: incoming,
		PendingOutgoing: active,
	}
}
