package repository

import (
	"context"

	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// TransferRepository define el puerto de persistencia de traslados.
// Create debe devolver domain.ErrConflict si el destino ya tiene un entrante activo.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.Transfer) error
	Update(ctx context.Context, t *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	ListActiveOutgoing(ctx context.Context, sourceRecordID string) ([]*entity.Transfer, error)
	GetActiveIncoming(ctx context.Context, destinationRecordID string) (*entity.Transfer, error)
	ListActiveByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Transfer, error)
}
