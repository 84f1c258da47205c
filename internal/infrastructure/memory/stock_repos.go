package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
	inv "github.com/jhoicas/optica-core/internal/domain/inventory"
	"github.com/jhoicas/optica-core/internal/domain/repository"
	"github.com/jhoicas/optica-core/internal/domain/transfer"
)

var (
	_ repository.WarehouseRepository       = (*WarehouseRepo)(nil)
	_ repository.InventoryRecordRepository = (*RecordRepo)(nil)
	_ repository.TransferRepository        = (*TransferRepo)(nil)
	_ repository.MovementRepository        = (*MovementRepo)(nil)
)

// WarehouseRepo almacenes en memoria.
type WarehouseRepo struct{ s *Store }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.warehouses[w.ID]; ok {
		return domain.Conflict("almacén duplicado: " + w.ID)
	}
	r.s.warehouses[w.ID] = *w
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WarehouseRepo) ListByCenter(_ context.Context, centerID string) ([]*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Warehouse
	for _, w := range r.s.warehouses {
		if w.CenterID == centerID {
			w := w
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// RecordRepo filas de inventario en memoria. GetForUpdate equivale a GetByID:
// el bloqueo lo da la serialización de transacciones del Store.
type RecordRepo struct{ s *Store }

func (r *RecordRepo) Create(_ context.Context, rec *entity.InventoryRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[rec.ID]; ok {
		return domain.Conflict("registro duplicado: " + rec.ID)
	}
	for _, existing := range r.s.records {
		if existing.ProductRef == rec.ProductRef && existing.WarehouseID == rec.WarehouseID {
			return domain.Conflict("el almacén ya tiene una fila para " + rec.ProductRef)
		}
	}
	r.s.records[rec.ID] = *rec
	return nil
}

func (r *RecordRepo) GetByID(_ context.Context, id string) (*entity.InventoryRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *RecordRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *RecordRepo) FindByProduct(_ context.Context, productRef, warehouseID string) (*entity.InventoryRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rec := range r.s.records {
		if rec.ProductRef == productRef && rec.WarehouseID == warehouseID {
			rec := rec
			return &rec, nil
		}
	}
	return nil, nil
}

func (r *RecordRepo) Update(_ context.Context, rec *entity.InventoryRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[rec.ID]; !ok {
		return domain.NotFound("registro", rec.ID)
	}
	r.s.records[rec.ID] = *rec
	return nil
}

// TransferRepo traslados en memoria.
type TransferRepo struct{ s *Store }

func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.transfers[t.ID]; ok {
		return domain.Conflict("traslado duplicado: " + t.ID)
	}
	// Equivalente al índice único parcial sobre destination_record_id.
	for _, existing := range r.s.transfers {
		if existing.DestinationRecordID == t.DestinationRecordID && transfer.State(existing.Status).Active() {
			return domain.Conflict("el destino ya tiene un traslado entrante activo")
		}
	}
	r.s.transfers[t.ID] = *t
	return nil
}

func (r *TransferRepo) Update(_ context.Context, t *entity.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.transfers[t.ID]; !ok {
		return domain.NotFound("traslado", t.ID)
	}
	r.s.transfers[t.ID] = *t
	return nil
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transfers[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) ListActiveOutgoing(_ context.Context, sourceRecordID string) ([]*entity.Transfer, error) {
	return r.filter(func(t entity.Transfer) bool {
		return t.SourceRecordID == sourceRecordID && transfer.State(t.Status).Active()
	}), nil
}

func (r *TransferRepo) GetActiveIncoming(_ context.Context, destinationRecordID string) (*entity.Transfer, error) {
	list := r.filter(func(t entity.Transfer) bool {
		return t.DestinationRecordID == destinationRecordID && transfer.State(t.Status).Active()
	})
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (r *TransferRepo) ListActiveByWarehouse(_ context.Context, warehouseID string) ([]*entity.Transfer, error) {
	return r.filter(func(t entity.Transfer) bool {
		return (t.SourceWarehouseID == warehouseID || t.DestinationWarehouseID == warehouseID) &&
			transfer.State(t.Status).Active()
	}), nil
}

func (r *TransferRepo) filter(keep func(entity.Transfer) bool) []*entity.Transfer {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Transfer
	for _, t := range r.s.transfers {
		if keep(t) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number < out[j].Number
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// MovementRepo libro de movimientos en memoria: solo inserción.
type MovementRepo struct{ s *Store }

func (r *MovementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *MovementRepo) ListByRecord(_ context.Context, recordID string, limit, offset int) ([]*entity.StockMovement, error) {
	list := inv.DedupeTransferEntries(r.newestFirst(func(m entity.StockMovement) bool {
		return m.RecordID == recordID || m.CounterpartRecordID == recordID
	}))
	if offset >= len(list) {
		return []*entity.StockMovement{}, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *MovementRepo) ListByDocument(_ context.Context, documentID string) ([]*entity.StockMovement, error) {
	return r.newestFirst(func(m entity.StockMovement) bool { return m.DocumentID == documentID }), nil
}

func (r *MovementRepo) SumDelta(_ context.Context, recordID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.RecordID == recordID {
			sum = sum.Add(m.Delta)
		}
	}
	return sum, nil
}

// newestFirst recorre el libro desde el final: el orden de inserción desempata fechas iguales.
func (r *MovementRepo) newestFirst(keep func(entity.StockMovement) bool) []*entity.StockMovement {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.StockMovement{}
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if keep(m) {
			out = append(out, &m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
