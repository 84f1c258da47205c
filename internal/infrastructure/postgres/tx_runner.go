package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/optica-core/internal/application/caisse"
	"github.com/jhoicas/optica-core/internal/application/inventory"
)

// Ensure TxRunner implements inventory.TxRunner and caisse.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ caisse.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + SELECT FOR UPDATE).
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos de stock atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.StockRepos) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(inventory.StockRepos{
			Records:   NewInventoryRecordRepository(tx),
			Transfers: NewTransferRepository(tx),
			Movements: NewMovementRepository(tx),
		})
	})
}

// RunCash inicia una transacción con los repos de caja.
func (r *TxRunner) RunCash(ctx context.Context, fn func(repos caisse.CashRepos) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(caisse.CashRepos{
			Registers:  NewCashRegisterRepository(tx),
			Sessions:   NewCashSessionRepository(tx),
			Operations: NewCashOperationRepository(tx),
		})
	})
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}
