package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/application/ports"
	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
	inv "github.com/jhoicas/optica-core/internal/domain/inventory"
	"github.com/jhoicas/optica-core/internal/domain/repository"
	"github.com/jhoicas/optica-core/internal/domain/transfer"
	"github.com/jhoicas/optica-core/pkg/logger"
)

// TransferUseCase conduce el protocolo de traslado entre almacenes:
// reserva -> envío -> recepción, o anulación antes de la recepción.
// Cada transición es una única transacción que vuelve a verificar el estado previo
// con las filas bloqueadas (SELECT FOR UPDATE), así dos llamadas concurrentes
// sobre el mismo registro producen un ganador y un error, nunca un doble descuento.
type TransferUseCase struct {
	txRunner   TxRunner
	records    repository.InventoryRecordRepository
	transfers  repository.TransferRepository
	warehouses repository.WarehouseRepository
	events     ports.EventPublisher
	metrics    ports.Metrics
	log        *logger.Logger
	now        func() time.Time
}

// NewTransferUseCase construye el caso de uso. events, metrics y log pueden ser nil.
func NewTransferUseCase(
	txRunner TxRunner,
	records repository.InventoryRecordRepository,
	transfers repository.TransferRepository,
	warehouses repository.WarehouseRepository,
	events ports.EventPublisher,
	metrics ports.Metrics,
	log *logger.Logger,
) *TransferUseCase {
	if events == nil {
		events = ports.NopPublisher{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TransferUseCase{
		txRunner:   txRunner,
		records:    records,
		transfers:  transfers,
		warehouses: warehouses,
		events:     events,
		metrics:    metrics,
		log:        log.Named("transfers"),
		now:        time.Now,
	}
}

// InitiateTransferInput entrada para reservar un traslado.
// Si DestinationRecordID está vacío se usa (o crea con cantidad cero) la fila del mismo
// producto en DestinationWarehouseID.
type InitiateTransferInput struct {
	SourceRecordID         string
	DestinationRecordID    string
	DestinationWarehouseID string
	Quantity               decimal.Decimal
	Actor                  string
	Reason                 string
}

// ActiveTransfers traslados activos de un almacén, separados por sentido.
type ActiveTransfers struct {
	WarehouseID string
	Incoming    []*entity.Transfer
	Outgoing    []*entity.Transfer
}

// InitiateTransfer reserva cantidad en el origen y ocupa el cupo entrante del destino.
// No cambia on-hand: solo la vista de disponibilidad. Agrega un TRANSFERT_INIT.
func (uc *TransferUseCase) InitiateTransfer(ctx context.Context, in InitiateTransferInput) (*entity.Transfer, error) {
	if in.SourceRecordID == "" {
		return nil, domain.Invalid("source_record_id", "requerido")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("quantity", "debe ser positiva")
	}
	if in.DestinationRecordID == "" && in.DestinationWarehouseID == "" {
		return nil, domain.Invalid("destination_record_id", "requerido (o destination_warehouse_id)")
	}
	if in.SourceRecordID == in.DestinationRecordID {
		return nil, domain.Invalid("destination_record_id", "origen y destino deben ser distintos")
	}

	now := uc.now()
	var created *entity.Transfer
	err := uc.txRunner.Run(ctx, func(r StockRepos) error {
		// La fila destino creada aquí se revierte junto con la reserva si esta falla.
		dstID := in.DestinationRecordID
		if dstID == "" {
			rec, err := uc.destinationRecord(ctx, r, in.SourceRecordID, in.DestinationWarehouseID, now)
			if err != nil {
				return err
			}
			dstID = rec.ID
		}
		if dstID == in.SourceRecordID {
			return domain.Invalid("destination_record_id", "origen y destino deben ser distintos")
		}
		src, dst, err := lockPair(ctx, r.Records, in.SourceRecordID, dstID)
		if err != nil {
			return err
		}
		if in.DestinationRecordID != "" {
			if _, err := uc.activeWarehouse(ctx, "destination_record_id", dst.WarehouseID); err != nil {
				return err
			}
		}
		if src.ProductRef != dst.ProductRef {
			return domain.Invalid("destination_record_id", "el destino pertenece a otro producto")
		}
		if src.WarehouseID == dst.WarehouseID {
			return domain.Invalid("destination_record_id", "origen y destino están en el mismo almacén")
		}
		status, err := transfer.Next(transfer.None, transfer.Initiate)
		if err != nil {
			return err
		}

		incoming, err := r.Transfers.GetActiveIncoming(ctx, dst.ID)
		if err != nil {
			return err
		}
		if incoming != nil {
			return domain.Conflict("el registro " + dst.ID + " ya tiene el traslado entrante " + incoming.Number)
		}
		outgoing, err := r.Transfers.ListActiveOutgoing(ctx, src.ID)
		if err != nil {
			return err
		}
		if !inv.CanReserve(src, outgoing, in.Quantity) {
			return &domain.InsufficientStockError{
				RecordID:  src.ID,
				Available: inv.Available(src, outgoing),
				Requested: in.Quantity,
			}
		}

		t := &entity.Transfer{
			ID:                     uuid.New().String(),
			Number:                 transferNumber(now),
			SourceRecordID:         src.ID,
			DestinationRecordID:    dst.ID,
			SourceWarehouseID:      src.WarehouseID,
			DestinationWarehouseID: dst.WarehouseID,
			ProductRef:             src.ProductRef,
			Quantity:               in.Quantity,
			Status:                 status.String(),
			Reason:                 in.Reason,
			InitiatedBy:            in.Actor,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := r.Transfers.Create(ctx, t); err != nil {
			return err
		}
		mov := transferMovement(t, entity.MovementTransfertInit, src.ID, dst.ID, decimal.Zero, in.Actor, now)
		mov.Reason = in.Reason
		if err := r.Movements.Append(ctx, mov); err != nil {
			return err
		}
		if err := refreshStatut(ctx, r, src, now); err != nil {
			return err
		}
		if err := refreshStatut(ctx, r, dst, now); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		uc.fail(transfer.Initiate, in.SourceRecordID, err)
		return nil, err
	}
	uc.done(ctx, transfer.Initiate, created, in.Actor)
	return created, nil
}

// ShipTransfer descuenta on-hand del origen y pasa el traslado a SHIPPED. Agrega un TRANSFERT_SORTIE.
func (uc *TransferUseCase) ShipTransfer(ctx context.Context, transferID, actor string) (*entity.Transfer, error) {
	return uc.transition(ctx, transferID, transfer.Ship, actor, "",
		func(t *entity.Transfer, src, dst *entity.InventoryRecord, now time.Time) (*entity.StockMovement, error) {
			if src.QuantiteActuelle.LessThan(t.Quantity) {
				return nil, &domain.InsufficientStockError{RecordID: src.ID, Available: src.QuantiteActuelle, Requested: t.Quantity}
			}
			src.QuantiteActuelle = src.QuantiteActuelle.Sub(t.Quantity)
			t.ShippedBy = actor
			t.ShippedAt = &now
			return transferMovement(t, entity.MovementTransfertSortie, src.ID, dst.ID, t.Quantity.Neg(), actor, now), nil
		})
}

// ReceiveTransfer acredita on-hand en el destino y cierra el traslado (RECEIVED).
// Agrega un RECEPTION con el número de traslado para deduplicar vistas TRANSFERT_ENTREE.
func (uc *TransferUseCase) ReceiveTransfer(ctx context.Context, transferID, actor string) (*entity.Transfer, error) {
	return uc.transition(ctx, transferID, transfer.Receive, actor, "",
		func(t *entity.Transfer, src, dst *entity.InventoryRecord, now time.Time) (*entity.StockMovement, error) {
			dst.QuantiteActuelle = dst.QuantiteActuelle.Add(t.Quantity)
			t.ReceivedBy = actor
			t.ReceivedAt = &now
			return transferMovement(t, entity.MovementReception, dst.ID, src.ID, t.Quantity, actor, now), nil
		})
}

// CancelTransfer anula un traslado RESERVED (sin efecto en cantidades) o SHIPPED
// (re-acredita el origen). Una segunda anulación falla con InvalidStateError.
func (uc *TransferUseCase) CancelTransfer(ctx context.Context, transferID, actor, reason string) (*entity.Transfer, error) {
	return uc.transition(ctx, transferID, transfer.Cancel, actor, reason,
		func(t *entity.Transfer, src, dst *entity.InventoryRecord, now time.Time) (*entity.StockMovement, error) {
			delta := decimal.Zero
			if transfer.State(t.Status) == transfer.Shipped {
				src.QuantiteActuelle = src.QuantiteActuelle.Add(t.Quantity)
				delta = t.Quantity
			}
			t.CancelledBy = actor
			t.CancelledAt = &now
			mov := transferMovement(t, entity.MovementTransfertAnnule, src.ID, dst.ID, delta, actor, now)
			mov.Reason = reason
			return mov, nil
		})
}

// ShipFromRecord envía el único traslado RESERVED saliente del registro.
func (uc *TransferUseCase) ShipFromRecord(ctx context.Context, sourceRecordID, actor string) (*entity.Transfer, error) {
	outgoing, err := uc.transfers.ListActiveOutgoing(ctx, sourceRecordID)
	if err != nil {
		return nil, err
	}
	var reserved []*entity.Transfer
	for _, t := range outgoing {
		if transfer.State(t.Status) == transfer.Reserved {
			reserved = append(reserved, t)
		}
	}
	switch len(reserved) {
	case 0:
		return nil, domain.NotFound("reserva saliente del registro", sourceRecordID)
	case 1:
		return uc.ShipTransfer(ctx, reserved[0].ID, actor)
	}
	return nil, domain.Conflict("el registro tiene varias reservas salientes; indique el traslado")
}

// ReceiveIntoRecord recibe el traslado entrante activo del registro destino.
func (uc *TransferUseCase) ReceiveIntoRecord(ctx context.Context, destinationRecordID, actor string) (*entity.Transfer, error) {
	incoming, err := uc.transfers.GetActiveIncoming(ctx, destinationRecordID)
	if err != nil {
		return nil, err
	}
	if incoming == nil {
		return nil, domain.NotFound("traslado entrante del registro", destinationRecordID)
	}
	return uc.ReceiveTransfer(ctx, incoming.ID, actor)
}

// CancelForRecord anula el traslado entrante activo del registro o, si no hay,
// su único traslado saliente activo.
func (uc *TransferUseCase) CancelForRecord(ctx context.Context, recordID, actor, reason string) (*entity.Transfer, error) {
	incoming, err := uc.transfers.GetActiveIncoming(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if incoming != nil {
		return uc.CancelTransfer(ctx, incoming.ID, actor, reason)
	}
	outgoing, err := uc.transfers.ListActiveOutgoing(ctx, recordID)
	if err != nil {
		return nil, err
	}
	switch len(outgoing) {
	case 0:
		return nil, domain.NotFound("traslado activo del registro", recordID)
	case 1:
		return uc.CancelTransfer(ctx, outgoing[0].ID, actor, reason)
	}
	return nil, domain.Conflict("el registro tiene varios traslados salientes; indique el traslado")
}

// GetTransfer obtiene un traslado por ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*entity.Transfer, error) {
	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("traslado", id)
	}
	return t, nil
}

// GetRecordView devuelve on-hand, reservado, disponible y traslados pendientes del registro.
func (uc *TransferUseCase) GetRecordView(ctx context.Context, recordID string) (*inv.RecordView, error) {
	rec, err := uc.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.NotFound("registro", recordID)
	}
	outgoing, err := uc.transfers.ListActiveOutgoing(ctx, recordID)
	if err != nil {
		return nil, err
	}
	incoming, err := uc.transfers.GetActiveIncoming(ctx, recordID)
	if err != nil {
		return nil, err
	}
	view := inv.BuildView(rec, outgoing, incoming)
	return &view, nil
}

// ListActiveTransfersForWarehouse lista los traslados activos que entran o salen del almacén.
// Es la consulta que alimenta cualquier mecanismo de notificación (push, poll, webhook).
func (uc *TransferUseCase) ListActiveTransfersForWarehouse(ctx context.Context, warehouseID string) (*ActiveTransfers, error) {
	wh, err := uc.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.NotFound("almacén", warehouseID)
	}
	list, err := uc.transfers.ListActiveByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	out := &ActiveTransfers{
		WarehouseID: warehouseID,
		Incoming:    []*entity.Transfer{},
		Outgoing:    []*entity.Transfer{},
	}
	for _, t := range list {
		if t.DestinationWarehouseID == warehouseID {
			out.Incoming = append(out.Incoming, t)
		}
		if t.SourceWarehouseID == warehouseID {
			out.Outgoing = append(out.Outgoing, t)
		}
	}
	return out, nil
}

type applyFunc func(t *entity.Transfer, src, dst *entity.InventoryRecord, now time.Time) (*entity.StockMovement, error)

// transition es el esqueleto común de ship/receive/cancel: bloquea los registros en orden,
// bloquea y revalida el traslado, consulta la tabla de transiciones y persiste todo en la misma tx.
func (uc *TransferUseCase) transition(ctx context.Context, transferID string, action transfer.Action, actor, reason string, apply applyFunc) (*entity.Transfer, error) {
	if transferID == "" {
		return nil, domain.Invalid("transfer_id", "requerido")
	}
	now := uc.now()
	var result *entity.Transfer
	err := uc.txRunner.Run(ctx, func(r StockRepos) error {
		current, err := r.Transfers.GetByID(ctx, transferID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NotFound("traslado", transferID)
		}
		src, dst, err := lockPair(ctx, r.Records, current.SourceRecordID, current.DestinationRecordID)
		if err != nil {
			return err
		}
		t, err := r.Transfers.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.NotFound("traslado", transferID)
		}
		from, err := transfer.Parse(t.Status)
		if err != nil {
			return err
		}
		to, err := transfer.Next(from, action)
		if err != nil {
			return &domain.InvalidStateError{Entity: "traslado", ID: t.Number, State: from.String(), Action: string(action)}
		}

		mov, err := apply(t, src, dst, now)
		if err != nil {
			return err
		}
		t.Status = to.String()
		t.UpdatedAt = now
		if reason != "" && t.Reason == "" {
			t.Reason = reason
		}
		if err := r.Transfers.Update(ctx, t); err != nil {
			return err
		}
		if err := r.Movements.Append(ctx, mov); err != nil {
			return err
		}
		if err := refreshStatut(ctx, r, src, now); err != nil {
			return err
		}
		if err := refreshStatut(ctx, r, dst, now); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		uc.fail(action, transferID, err)
		return nil, err
	}
	uc.done(ctx, action, result, actor)
	return result, nil
}

// destinationRecord devuelve la fila del producto de origen en el almacén destino,
// creándola con cantidad cero si el almacén aún no lo tiene.
func (uc *TransferUseCase) destinationRecord(ctx context.Context, r StockRepos, sourceRecordID, warehouseID string, now time.Time) (*entity.InventoryRecord, error) {
	if _, err := uc.activeWarehouse(ctx, "destination_warehouse_id", warehouseID); err != nil {
		return nil, err
	}
	src, err := r.Records.GetByID(ctx, sourceRecordID)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, domain.NotFound("registro", sourceRecordID)
	}
	return findOrCreateRecord(ctx, r.Records, src.ProductRef, src.Designation, warehouseID, src.UnitCost, now)
}

// activeWarehouse carga el almacén y rechaza los inactivos como error de validación sobre field.
func (uc *TransferUseCase) activeWarehouse(ctx context.Context, field, warehouseID string) (*entity.Warehouse, error) {
	wh, err := uc.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.NotFound("almacén", warehouseID)
	}
	if !wh.Active {
		return nil, domain.Invalid(field, "el almacén "+wh.Label()+" está inactivo")
	}
	return wh, nil
}

func (uc *TransferUseCase) done(ctx context.Context, action transfer.Action, t *entity.Transfer, actor string) {
	uc.metrics.ObserveTransfer(string(action), "ok")
	uc.log.Ctx(ctx).Info().
		Str("action", string(action)).
		Str("transfer_id", t.ID).
		Str("transfer_number", t.Number).
		Str("status", t.Status).
		Str("quantity", t.Quantity.String()).
		Str("actor", actor).
		Msg("transición de traslado confirmada")

	event := ports.TransferEvent{
		EventID:                uuid.New().String(),
		EventType:              eventTypeFor(action),
		TransferID:             t.ID,
		TransferNumber:         t.Number,
		Status:                 t.Status,
		SourceRecordID:         t.SourceRecordID,
		DestinationRecordID:    t.DestinationRecordID,
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		Quantity:               t.Quantity,
		Actor:                  actor,
		Timestamp:              t.UpdatedAt,
	}
	if err := uc.events.PublishTransfer(ctx, event); err != nil {
		uc.log.Warn().Err(err).Str("transfer_id", t.ID).Msg("no se pudo publicar el evento de traslado")
	}
}

func (uc *TransferUseCase) fail(action transfer.Action, ref string, err error) {
	code := domain.Code(err)
	uc.metrics.ObserveTransfer(string(action), code)
	ev := uc.log.Warn()
	if code == "INTERNAL" {
		ev = uc.log.Error()
	}
	ev.Err(err).Str("action", string(action)).Str("ref", ref).Str("code", code).Msg("transición de traslado rechazada")
}

func eventTypeFor(action transfer.Action) string {
	switch action {
	case transfer.Initiate:
		return ports.EventTransferReserved
	case transfer.Ship:
		return ports.EventTransferShipped
	case transfer.Receive:
		return ports.EventTransferReceived
	}
	return ports.EventTransferCancelled
}

// lockPair bloquea ambos registros en orden ascendente de ID para evitar interbloqueos.
func lockPair(ctx context.Context, repo repository.InventoryRecordRepository, srcID, dstID string) (*entity.InventoryRecord, *entity.InventoryRecord, error) {
	first, second := srcID, dstID
	if second < first {
		first, second = second, first
	}
	a, err := repo.GetForUpdate(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, domain.NotFound("registro", first)
	}
	b, err := repo.GetForUpdate(ctx, second)
	if err != nil {
		return nil, nil, err
	}
	if b == nil {
		return nil, nil, domain.NotFound("registro", second)
	}
	if a.ID == srcID {
		return a, b, nil
	}
	return b, a, nil
}

// refreshStatut recalcula el statut del registro con sus traslados activos y persiste la fila.
func refreshStatut(ctx context.Context, r StockRepos, rec *entity.InventoryRecord, now time.Time) error {
	outgoing, err := r.Transfers.ListActiveOutgoing(ctx, rec.ID)
	if err != nil {
		return err
	}
	incoming, err := r.Transfers.GetActiveIncoming(ctx, rec.ID)
	if err != nil {
		return err
	}
	rec.Statut = inv.DeriveStatut(rec, outgoing, incoming)
	rec.UpdatedAt = now
	return r.Records.Update(ctx, rec)
}

func transferMovement(t *entity.Transfer, movType, recordID, counterpartID string, delta decimal.Decimal, actor string, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:                     uuid.New().String(),
		Type:                   movType,
		RecordID:               recordID,
		CounterpartRecordID:    counterpartID,
		ProductRef:             t.ProductRef,
		Quantity:               t.Quantity,
		Delta:                  delta,
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		TransferNumber:         t.Number,
		Actor:                  actor,
		CreatedAt:              now,
	}
}

func transferNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "TR-" + now.Format("20060102") + "-" + suffix
}
