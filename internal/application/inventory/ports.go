package inventory

import (
	"context"

	"github.com/jhoicas/optica-core/internal/domain/repository"
)

// StockRepos agrupa los repositorios de stock atados a una misma transacción.
type StockRepos struct {
	Records   repository.InventoryRecordRepository
	Transfers repository.TransferRepository
	Movements repository.MovementRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso. Garantiza atomicidad para cada transición.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos StockRepos) error) error
}
