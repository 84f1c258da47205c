package repository

import (
	"context"

	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// CashRegisterRepository define el puerto para cajas.
type CashRegisterRepository interface {
	Create(ctx context.Context, register *entity.CashRegister) error
	GetByID(ctx context.Context, id string) (*entity.CashRegister, error)
}

// CashSessionRepository define el puerto para jornadas de caja.
// Create debe devolver domain.ErrConflict si la caja ya tiene una jornada OUVERTE.
type CashSessionRepository interface {
	Create(ctx context.Context, session *entity.CashSession) error
	GetByID(ctx context.Context, id string) (*entity.CashSession, error)
	GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error)
	GetOpenByRegister(ctx context.Context, registerID string) (*entity.CashSession, error)
	LastClosedByRegister(ctx context.Context, registerID string) (*entity.CashSession, error)
	Update(ctx context.Context, session *entity.CashSession) error
}

// CashOperationRepository define el puerto para operaciones de caja.
type CashOperationRepository interface {
	Create(ctx context.Context, op *entity.CashOperation) error
	GetByID(ctx context.Context, id string) (*entity.CashOperation, error)
	ListBySession(ctx context.Context, sessionID string) ([]*entity.CashOperation, error)
	Delete(ctx context.Context, id string) error
}
