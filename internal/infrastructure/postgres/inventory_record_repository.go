package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
	"github.com/jhoicas/optica-core/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

// InventoryRecordRepo filas de inventario sobre PostgreSQL (usable con pool o tx).
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

const recordColumns = `id, product_ref, designation, warehouse_id, quantite_actuelle, statut, unit_cost, created_at, updated_at`

func scanRecord(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := row.Scan(
		&rec.ID, &rec.ProductRef, &rec.Designation, &rec.WarehouseID,
		&rec.QuantiteActuelle, &rec.Statut, &rec.UnitCost, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserta la fila; (product_ref, warehouse_id) es único.
func (r *InventoryRecordRepo) Create(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `INSERT INTO inventory_records (` + recordColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.ProductRef, rec.Designation, rec.WarehouseID,
		rec.QuantiteActuelle, rec.Statut, rec.UnitCost, rec.CreatedAt, rec.UpdatedAt,
	)
	return mapError("insert inventory record", err)
}

// GetByID obtiene la fila sin bloquear.
func (r *InventoryRecordRepo) GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.getOne(ctx, "get inventory record", `SELECT `+recordColumns+` FROM inventory_records WHERE id = $1`, id)
}

// GetForUpdate obtiene la fila y la bloquea hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *InventoryRecordRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.getOne(ctx, "lock inventory record", `SELECT `+recordColumns+` FROM inventory_records WHERE id = $1 FOR UPDATE`, id)
}

// FindByProduct ubica la fila de un producto en un almacén.
func (r *InventoryRecordRepo) FindByProduct(ctx context.Context, productRef, warehouseID string) (*entity.InventoryRecord, error) {
	return r.getOne(ctx, "find inventory record",
		`SELECT `+recordColumns+` FROM inventory_records WHERE product_ref = $1 AND warehouse_id = $2`,
		productRef, warehouseID)
}

// Update persiste cantidad, statut y costo.
func (r *InventoryRecordRepo) Update(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		UPDATE inventory_records
		SET quantite_actuelle = $2, statut = $3, unit_cost = $4, designation = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, rec.ID, rec.QuantiteActuelle, rec.Statut, rec.UnitCost, rec.Designation, rec.UpdatedAt)
	if err != nil {
		return mapError("update inventory record", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("registro", rec.ID)
	}
	return nil
}

func (r *InventoryRecordRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.InventoryRecord, error) {
	rec, err := scanRecord(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return rec, nil
}

