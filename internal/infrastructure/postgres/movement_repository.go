package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/domain/entity"
	"github.com/jhoicas/optica-core/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL. La tabla rechaza UPDATE y DELETE
// mediante trigger; aquí solo hay INSERT y lecturas.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, type, record_id, counterpart_record_id, product_ref, quantity, delta,
	source_warehouse_id, destination_warehouse_id, transfer_number, document_id, document_type, reason, actor, created_at`

// Append inserta un movimiento (nunca se modifica después).
func (r *MovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Type, m.RecordID, nullable(m.CounterpartRecordID), m.ProductRef, m.Quantity, m.Delta,
		nullable(m.SourceWarehouseID), nullable(m.DestinationWarehouseID),
		m.TransferNumber, m.DocumentID, m.DocumentType, m.Reason, m.Actor, m.CreatedAt,
	)
	return mapError("insert movement", err)
}

// ListByRecord movimientos propios o de contraparte del registro, más recientes primero.
func (r *MovementRepo) ListByRecord(ctx context.Context, recordID string, limit, offset int) ([]*entity.StockMovement, error) {
	// Las filas TRANSFERT_ENTREE con un RECEPTION del mismo traslado se filtran antes del LIMIT.
	query := `SELECT ` + movementColumns + ` FROM stock_movements m
		WHERE (m.record_id = $1 OR m.counterpart_record_id = $1)
		AND NOT (m.type = $4 AND EXISTS (
			SELECT 1 FROM stock_movements r
			WHERE r.type = $5 AND r.transfer_number <> '' AND r.transfer_number = m.transfer_number
			AND (r.record_id = $1 OR r.counterpart_record_id = $1)))
		ORDER BY m.created_at DESC, m.seq DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, recordID, limit, offset, entity.MovementTransfertEntree, entity.MovementReception)
}

// ListByDocument movimientos generados por un documento, más recientes primero.
func (r *MovementRepo) ListByDocument(ctx context.Context, documentID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE document_id = $1 ORDER BY created_at DESC, seq DESC`
	return r.list(ctx, query, documentID)
}

// SumDelta suma los deltas con efecto sobre el registro.
func (r *MovementRepo) SumDelta(ctx context.Context, recordID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(delta), 0) FROM stock_movements WHERE record_id = $1`, recordID).Scan(&sum)
	if err != nil {
		return decimal.Zero, mapError("sum movement delta", err)
	}
	return sum, nil
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m                     entity.StockMovement
		counterpart, src, dst *string
	)
	err := row.Scan(
		&m.ID, &m.Type, &m.RecordID, &counterpart, &m.ProductRef, &m.Quantity, &m.Delta,
		&src, &dst, &m.TransferNumber, &m.DocumentID, &m.DocumentType, &m.Reason, &m.Actor, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.CounterpartRecordID = deref(counterpart)
	m.SourceWarehouseID = deref(src)
	m.DestinationWarehouseID = deref(dst)
	return &m, nil
}
