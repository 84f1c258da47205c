package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
	"github.com/jhoicas/optica-core/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados sobre PostgreSQL. El índice único parcial
// ux_transfer_active_destination garantiza un solo traslado activo por destino.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, number, source_record_id, destination_record_id, source_warehouse_id, destination_warehouse_id,
	product_ref, quantity, status, reason, initiated_by, shipped_by, received_by, cancelled_by,
	created_at, shipped_at, received_at, cancelled_at, updated_at`

const activeStatuses = `('RESERVED', 'SHIPPED')`

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	err := row.Scan(
		&t.ID, &t.Number, &t.SourceRecordID, &t.DestinationRecordID, &t.SourceWarehouseID, &t.DestinationWarehouseID,
		&t.ProductRef, &t.Quantity, &t.Status, &t.Reason, &t.InitiatedBy, &t.ShippedBy, &t.ReceivedBy, &t.CancelledBy,
		&t.CreatedAt, &t.ShippedAt, &t.ReceivedAt, &t.CancelledAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserta el traslado; un segundo entrante activo al mismo destino devuelve ConflictError.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `INSERT INTO stock_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Number, t.SourceRecordID, t.DestinationRecordID, t.SourceWarehouseID, t.DestinationWarehouseID,
		t.ProductRef, t.Quantity, t.Status, t.Reason, t.InitiatedBy, t.ShippedBy, t.ReceivedBy, t.CancelledBy,
		t.CreatedAt, t.ShippedAt, t.ReceivedAt, t.CancelledAt, t.UpdatedAt,
	)
	return mapError("insert transfer", err)
}

// Update persiste estado, actores y marcas de tiempo.
func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	query := `
		UPDATE stock_transfers
		SET status = $2, reason = $3, shipped_by = $4, received_by = $5, cancelled_by = $6,
		    shipped_at = $7, received_at = $8, cancelled_at = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, t.Status, t.Reason, t.ShippedBy, t.ReceivedBy, t.CancelledBy,
		t.ShippedAt, t.ReceivedAt, t.CancelledAt, t.UpdatedAt,
	)
	if err != nil {
		return mapError("update transfer", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("traslado", t.ID)
	}
	return nil
}

// GetByID obtiene un traslado sin bloquear.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, "get transfer", `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea el traslado (SELECT FOR UPDATE).
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, "lock transfer", `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1 FOR UPDATE`, id)
}

// ListActiveOutgoing traslados RESERVED o SHIPPED que salen del registro.
func (r *TransferRepo) ListActiveOutgoing(ctx context.Context, sourceRecordID string) ([]*entity.Transfer, error) {
	return r.list(ctx, "list outgoing transfers",
		`SELECT `+transferColumns+` FROM stock_transfers
		 WHERE source_record_id = $1 AND status IN `+activeStatuses+` ORDER BY created_at, number`,
		sourceRecordID)
}

// GetActiveIncoming el traslado activo que entra al registro, si existe.
func (r *TransferRepo) GetActiveIncoming(ctx context.Context, destinationRecordID string) (*entity.Transfer, error) {
	return r.getOne(ctx, "get incoming transfer",
		`SELECT `+transferColumns+` FROM stock_transfers
		 WHERE destination_record_id = $1 AND status IN `+activeStatuses,
		destinationRecordID)
}

// ListActiveByWarehouse traslados activos que entran o salen del almacén.
func (r *TransferRepo) ListActiveByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Transfer, error) {
	return r.list(ctx, "list warehouse transfers",
		`SELECT `+transferColumns+` FROM stock_transfers
		 WHERE (source_warehouse_id = $1 OR destination_warehouse_id = $1) AND status IN `+activeStatuses+`
		 ORDER BY created_at, number`,
		warehouseID)
}

func (r *TransferRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return t, nil
}

func (r *TransferRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Transfer, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
