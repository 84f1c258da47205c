package repository

import (
	"context"

	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// InventoryRecordRepository define el puerto para las filas de producto por almacén.
// GetForUpdate bloquea la fila hasta el fin de la transacción; nil, nil si no existe.
type InventoryRecordRepository interface {
	Create(ctx context.Context, record *entity.InventoryRecord) error
	GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error)
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error)
	FindByProduct(ctx context.Context, productRef, warehouseID string) (*entity.InventoryRecord, error)
	Update(ctx context.Context, record *entity.InventoryRecord) error
}
