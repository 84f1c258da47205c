package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/optica-core/internal/application/inventory"
	"github.com/jhoicas/optica-core/internal/application/ports"
	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
	"github.com/jhoicas/optica-core/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	whA     = "wh-a"
	whB     = "wh-b"
	whC     = "wh-c"
	product = "MONT-RB-3025"
)

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type recordingPublisher struct {
	mu       sync.Mutex
	transfer []ports.TransferEvent
	fail     bool
}

func (p *recordingPublisher) PublishTransfer(_ context.Context, e ports.TransferEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transfer = append(p.transfer, e)
	if p.fail {
		return errors.New("broker caído")
	}
	return nil
}

func (p *recordingPublisher) PublishCash(context.Context, ports.CashEvent) error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.transfer))
	for _, e := range p.transfer {
		out = append(out, e.EventType)
	}
	return out
}

type fixture struct {
	store     *memory.Store
	events    *recordingPublisher
	transfers *inventory.TransferUseCase
	movements *inventory.RegisterMovementUseCase
	ledger    *inventory.LedgerUseCase
	bulk      *inventory.BulkUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	for _, id := range []string{whA, whB, whC} {
		require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{
			ID: id, CenterID: "center-1", Code: id, Name: "Almacén " + id, Active: true,
		}))
	}
	events := &recordingPublisher{}
	transfers := inventory.NewTransferUseCase(store, store.Records(), store.Transfers(), store.Warehouses(), events, nil, nil)
	return &fixture{
		store:     store,
		events:    events,
		transfers: transfers,
		movements: inventory.NewRegisterMovementUseCase(store, store.Warehouses(), nil),
		ledger:    inventory.NewLedgerUseCase(store.Records(), store.Movements()),
		bulk:      inventory.NewBulkUseCase(transfers),
	}
}

// stock crea (vía ENTREE_ACHAT) la fila del producto en el almacén con la cantidad indicada.
func (f *fixture) stock(t *testing.T, warehouseID string, q int64) string {
	t.Helper()
	cost := qty(100)
	mov, err := f.movements.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		ProductRef:  product,
		Designation: "Ray-Ban Round Metal",
		WarehouseID: warehouseID,
		Type:        entity.MovementEntreeAchat,
		Quantity:    qty(q),
		UnitCost:    &cost,
		DocumentID:  "FAC-" + warehouseID,
		Actor:       "seed",
	})
	require.NoError(t, err)
	return mov.RecordID
}

func (f *fixture) onHand(t *testing.T, recordID string) decimal.Decimal {
	t.Helper()
	rec, err := f.store.Records().GetByID(context.Background(), recordID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec.QuantiteActuelle
}

func (f *fixture) initiate(t *testing.T, src, dst string, q int64) *entity.Transfer {
	t.Helper()
	tr, err := f.transfers.InitiateTransfer(context.Background(), inventory.InitiateTransferInput{
		SourceRecordID: src, DestinationRecordID: dst, Quantity: qty(q), Actor: "op-1",
	})
	require.NoError(t, err)
	return tr
}

func (f *fixture) assertConsistent(t *testing.T, recordIDs ...string) {
	t.Helper()
	for _, id := range recordIDs {
		res, err := f.ledger.ReconcileRecord(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, res.Consistent, "registro %s: on-hand %s, libro %s", id, res.OnHand, res.LedgerSum)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Protocolo de traslado
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_CicloCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	dst := f.stock(t, whB, 1)

	tr := f.initiate(t, src, dst, 4)
	assert.Equal(t, "RESERVED", tr.Status)
	assert.Regexp(t, `^TR-\d{8}-[0-9A-F]{8}$`, tr.Number)

	view, err := f.transfers.GetRecordView(ctx, src)
	require.NoError(t, err)
	assert.True(t, view.Record.QuantiteActuelle.Equal(qty(10)), "la reserva no cambia on-hand")
	assert.True(t, view.Reserved.Equal(qty(4)))
	assert.True(t, view.Available.Equal(qty(6)))

	shipped, err := f.transfers.ShipTransfer(ctx, tr.ID, "op-2")
	require.NoError(t, err)
	assert.Equal(t, "SHIPPED", shipped.Status)
	assert.Equal(t, "op-2", shipped.ShippedBy)
	assert.True(t, f.onHand(t, src).Equal(qty(6)))

	view, err = f.transfers.GetRecordView(ctx, src)
	require.NoError(t, err)
	assert.True(t, view.Reserved.IsZero(), "lo expedido ya no está reservado")
	assert.True(t, view.Available.Equal(qty(6)))
	assert.Len(t, view.PendingOutgoing, 1)

	dstRec, err := f.store.Records().GetByID(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, entity.StatutEnTransit, dstRec.Statut)

	received, err := f.transfers.ReceiveTransfer(ctx, tr.ID, "op-3")
	require.NoError(t, err)
	assert.Equal(t, "RECEIVED", received.Status)
	assert.NotNil(t, received.ReceivedAt)
	assert.True(t, f.onHand(t, src).Equal(qty(6)))
	assert.True(t, f.onHand(t, dst).Equal(qty(5)))

	f.assertConsistent(t, src, dst)
	assert.Equal(t, []string{
		ports.EventTransferReserved, ports.EventTransferShipped, ports.EventTransferReceived,
	}, f.events.types())
}

func TestTransfer_ConservaTotalDelProducto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	dst := f.stock(t, whB, 2)

	tr := f.initiate(t, src, dst, 7)
	_, err := f.transfers.ShipTransfer(ctx, tr.ID, "op")
	require.NoError(t, err)
	// en tránsito: las 7 unidades están fuera de ambos on-hand
	assert.True(t, f.onHand(t, src).Add(f.onHand(t, dst)).Add(qty(7)).Equal(qty(12)))

	_, err = f.transfers.ReceiveTransfer(ctx, tr.ID, "op")
	require.NoError(t, err)
	assert.True(t, f.onHand(t, src).Add(f.onHand(t, dst)).Equal(qty(12)))
}

func TestTransfer_AnularReservaNoMueveCantidades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	dst := f.stock(t, whB, 1)

	tr := f.initiate(t, src, dst, 4)
	cancelled, err := f.transfers.CancelTransfer(ctx, tr.ID, "op", "error de captura")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.Equal(t, "error de captura", cancelled.Reason)
	assert.True(t, f.onHand(t, src).Equal(qty(10)))

	view, err := f.transfers.GetRecordView(ctx, src)
	require.NoError(t, err)
	assert.True(t, view.Available.Equal(qty(10)))
	f.assertConsistent(t, src, dst)
}

func TestTransfer_AnularEnviadoReacreditaOrigen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	dst := f.stock(t, whB, 1)

	tr := f.initiate(t, src, dst, 4)
	_, err := f.transfers.ShipTransfer(ctx, tr.ID, "op")
	require.NoError(t, err)
	require.True(t, f.onHand(t, src).Equal(qty(6)))

	_, err = f.transfers.CancelTransfer(ctx, tr.ID, "op", "devuelto por transportista")
	require.NoError(t, err)
	assert.True(t, f.onHand(t, src).Equal(qty(10)))
	assert.True(t, f.onHand(t, dst).Equal(qty(1)))
	f.assertConsistent(t, src, dst)

	// el cupo entrante del destino queda libre
	_ = f.initiate(t, src, dst, 2)
}

func TestTransfer_TransicionesInvalidasNoTienenEfecto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	dst := f.stock(t, whB, 1)

	tr := f.initiate(t, src, dst, 4)

	// recibir sin enviar
	_, err := f.transfers.ReceiveTransfer(ctx, tr.ID, "op")
	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "RESERVED", stateErr.State)

	_, err = f.transfers.CancelTransfer(ctx, tr.ID, "op", "")
	require.NoError(t, err)
	before := len(f.store.AllMovements())

	for name, call := range map[string]func() error{
		"segunda anulación": func() error { _, err := f.transfers.CancelTransfer(ctx, tr.ID, "op", ""); return err },
		"envío tras anular": func() error { _, err := f.transfers.ShipTransfer(ctx, tr.ID, "op"); return err },
		"recepción":         func() error { _, err := f.transfers.ReceiveTransfer(ctx, tr.ID, "op"); return err },
	} {
		err := call()
		assert.ErrorIs(t, err, domain.ErrInvalidState, name)
	}
	assert.Len(t, f.store.AllMovements(), before, "ningún movimiento nuevo")
	assert.True(t, f.onHand(t, src).Equal(qty(10)))
}

func TestTransfer_DobleRecepcionFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	dst := f.stock(t, whB, 1)

	tr := f.initiate(t, src, dst, 4)
	_, err := f.transfers.ShipTransfer(ctx, tr.ID, "op")
	require.NoError(t, err)
	_, err = f.transfers.ReceiveTransfer(ctx, tr.ID, "op")
	require.NoError(t, err)

	_, err = f.transfers.ReceiveTransfer(ctx, tr.ID, "op")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.True(t, f.onHand(t, dst).Equal(qty(5)))
}

func TestTransfer_DestinoConEntranteActivoEsConflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	srcA := f.stock(t, whA, 10)
	srcC := f.stock(t, whC, 10)
	dst := f.stock(t, whB, 1)

	_ = f.initiate(t, srcA, dst, 2)
	_, err := f.transfers.InitiateTransfer(ctx, inventory.InitiateTransferInput{
		SourceRecordID: srcC, DestinationRecordID: dst, Quantity: qty(1), Actor: "op",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	view, err := f.transfers.GetRecordView(ctx, srcC)
	require.NoError(t, err)
	assert.True(t, view.Reserved.IsZero())
}

func TestTransfer_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 5)
	dstB := f.stock(t, whB, 1)
	dstC := f.stock(t, whC, 1)

	_ = f.initiate(t, src, dstB, 4)
	_, err := f.transfers.InitiateTransfer(ctx, inventory.InitiateTransferInput{
		SourceRecordID: src, DestinationRecordID: dstC, Quantity: qty(2), Actor: "op",
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(qty(1)))
	assert.True(t, stockErr.Requested.Equal(qty(2)))
}

func TestTransfer_ValidacionDeEntrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 5)
	dst := f.stock(t, whB, 1)

	cases := []struct {
		name string
		in   inventory.InitiateTransferInput
		want error
	}{
		{"cantidad cero", inventory.InitiateTransferInput{SourceRecordID: src, DestinationRecordID: dst}, domain.ErrInvalidInput},
		{"mismo registro", inventory.InitiateTransferInput{SourceRecordID: src, DestinationRecordID: src, Quantity: qty(1)}, domain.ErrInvalidInput},
		{"sin destino", inventory.InitiateTransferInput{SourceRecordID: src, Quantity: qty(1)}, domain.ErrInvalidInput},
		{"origen inexistente", inventory.InitiateTransferInput{SourceRecordID: "nope", DestinationRecordID: dst, Quantity: qty(1)}, domain.ErrNotFound},
		{"almacén inexistente", inventory.InitiateTransferInput{SourceRecordID: src, DestinationWarehouseID: "wh-x", Quantity: qty(1)}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.transfers.InitiateTransfer(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTransfer_CreaRegistroDestinoPorAlmacen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 5)

	tr, err := f.transfers.InitiateTransfer(ctx, inventory.InitiateTransferInput{
		SourceRecordID: src, DestinationWarehouseID: whC, Quantity: qty(3), Actor: "op",
	})
	require.NoError(t, err)
	assert.Equal(t, whC, tr.DestinationWarehouseID)

	dst, err := f.store.Records().FindByProduct(ctx, product, whC)
	require.NoError(t, err)
	require.NotNil(t, dst)
	assert.Equal(t, dst.ID, tr.DestinationRecordID)
	assert.True(t, dst.QuantiteActuelle.IsZero())
}

func TestTransfer_ConcurrenciaNoSobrevende(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)

	// 8 destinos distintos piden 3 unidades cada uno: como mucho 3 reservas caben en 10.
	warehouses := []string{"w1", "w2", "w3", "w4", "w5", "w6", "w7", "w8"}
	dsts := make([]string, 0, len(warehouses))
	for _, w := range warehouses {
		require.NoError(t, f.store.Warehouses().Create(ctx, &entity.Warehouse{ID: w, Code: w, Active: true}))
		dsts = append(dsts, f.stock(t, w, 1))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		okCount  int
		rejected int
	)
	for _, dst := range dsts {
		wg.Add(1)
		go func(dst string) {
			defer wg.Done()
			_, err := f.transfers.InitiateTransfer(ctx, inventory.InitiateTransferInput{
				SourceRecordID: src, DestinationRecordID: dst, Quantity: qty(3), Actor: "op",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				okCount++
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			rejected++
		}(dst)
	}
	wg.Wait()

	assert.Equal(t, 3, okCount)
	assert.Equal(t, 5, rejected)
	view, err := f.transfers.GetRecordView(ctx, src)
	require.NoError(t, err)
	assert.True(t, view.Reserved.LessThanOrEqual(view.Record.QuantiteActuelle))
}

func TestTransfer_EnvioConcurrenteUnSoloGanador(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	dst := f.stock(t, whB, 1)
	tr := f.initiate(t, src, dst, 4)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.transfers.ShipTransfer(ctx, tr.ID, "op")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	}
	assert.Equal(t, 1, wins)
	assert.True(t, f.onHand(t, src).Equal(qty(6)))
	f.assertConsistent(t, src)
}

func TestTransfer_OperacionesPorRegistro(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	dst := f.stock(t, whB, 1)

	_, err := f.transfers.ShipFromRecord(ctx, src, "op")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	tr := f.initiate(t, src, dst, 4)
	shipped, err := f.transfers.ShipFromRecord(ctx, src, "op")
	require.NoError(t, err)
	assert.Equal(t, tr.ID, shipped.ID)

	received, err := f.transfers.ReceiveIntoRecord(ctx, dst, "op")
	require.NoError(t, err)
	assert.Equal(t, "RECEIVED", received.Status)

	_, err = f.transfers.ReceiveIntoRecord(ctx, dst, "op")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransfer_CancelForRecordAmbiguo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	dstB := f.stock(t, whB, 1)
	dstC := f.stock(t, whC, 1)

	_ = f.initiate(t, src, dstB, 2)
	_ = f.initiate(t, src, dstC, 2)

	_, err := f.transfers.CancelForRecord(ctx, src, "op", "")
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.transfers.ShipFromRecord(ctx, src, "op")
	assert.ErrorIs(t, err, domain.ErrConflict)

	cancelled, err := f.transfers.CancelForRecord(ctx, dstC, "op", "")
	require.NoError(t, err)
	assert.Equal(t, dstC, cancelled.DestinationRecordID)
}

func TestTransfer_ListaActivosPorAlmacen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	dstB := f.stock(t, whB, 1)
	dstC := f.stock(t, whC, 1)

	trB := f.initiate(t, src, dstB, 2)
	trC := f.initiate(t, src, dstC, 2)
	_, err := f.transfers.CancelTransfer(ctx, trC.ID, "op", "")
	require.NoError(t, err)

	active, err := f.transfers.ListActiveTransfersForWarehouse(ctx, whA)
	require.NoError(t, err)
	require.Len(t, active.Outgoing, 1)
	assert.Equal(t, trB.ID, active.Outgoing[0].ID)
	assert.Empty(t, active.Incoming)

	active, err = f.transfers.ListActiveTransfersForWarehouse(ctx, whB)
	require.NoError(t, err)
	require.Len(t, active.Incoming, 1)

	_, err = f.transfers.ListActiveTransfersForWarehouse(ctx, "wh-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransfer_FalloDelPublicadorNoRevierte(t *testing.T) {
	f := newFixture(t)
	f.events.fail = true
	src := f.stock(t, whA, 10)
	dst := f.stock(t, whB, 1)

	tr := f.initiate(t, src, dst, 4)
	got, err := f.transfers.GetTransfer(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "RESERVED", got.Status)
}

func TestTransfer_ContextoCancelado(t *testing.T) {
	f := newFixture(t)
	src := f.stock(t, whA, 10)
	dst := f.stock(t, whB, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := f.transfers.InitiateTransfer(ctx, inventory.InitiateTransferInput{
		SourceRecordID: src, DestinationRecordID: dst, Quantity: qty(1),
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTransfer_AlmacenInactivoNoRecibe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	require.NoError(t, f.store.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-old", Code: "OLD", Name: "Cerrado", Active: false}))

	_, err := f.transfers.InitiateTransfer(ctx, inventory.InitiateTransferInput{
		SourceRecordID: src, DestinationWarehouseID: "wh-old", Quantity: qty(1), Actor: "op",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "OLD - Cerrado")
}

func TestTransfer_RegistroDestinoEnAlmacenInactivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	require.NoError(t, f.store.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-old", Code: "OLD", Name: "Cerrado", Active: false}))
	now := time.Now()
	require.NoError(t, f.store.Records().Create(ctx, &entity.InventoryRecord{
		ID: "rec-old", ProductRef: product, WarehouseID: "wh-old",
		QuantiteActuelle: decimal.Zero, Statut: entity.StatutEpuise, CreatedAt: now, UpdatedAt: now,
	}))

	_, err := f.transfers.InitiateTransfer(ctx, inventory.InitiateTransferInput{
		SourceRecordID: src, DestinationRecordID: "rec-old", Quantity: qty(1), Actor: "op",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, f.store.AllMovements(), 1)
}

func TestTransfer_ReservaFallidaNoDejaRegistroDestino(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 2)

	_, err := f.transfers.InitiateTransfer(ctx, inventory.InitiateTransferInput{
		SourceRecordID: src, DestinationWarehouseID: whC, Quantity: qty(5), Actor: "op",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	rec, err := f.store.Records().FindByProduct(ctx, product, whC)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.True(t, f.onHand(t, src).Equal(qty(2)))
}
