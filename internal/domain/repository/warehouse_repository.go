package repository

import (
	"context"

	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para almacenes.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	ListByCenter(ctx context.Context, centerID string) ([]*entity.Warehouse, error)
}
