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

var (
	_ repository.CashRegisterRepository  = (*CashRegisterRepo)(nil)
	_ repository.CashSessionRepository   = (*CashSessionRepo)(nil)
	_ repository.CashOperationRepository = (*CashOperationRepo)(nil)
)

// CashRegisterRepo cajas sobre PostgreSQL.
type CashRegisterRepo struct {
	q Querier
}

// NewCashRegisterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashRegisterRepository(q Querier) *CashRegisterRepo {
	return &CashRegisterRepo{q: q}
}

func (r *CashRegisterRepo) Create(ctx context.Context, reg *entity.CashRegister) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO cash_registers (id, center_id, name, kind, active, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.CenterID, reg.Name, reg.Kind, reg.Active, reg.CreatedAt,
	)
	return mapError("insert cash register", err)
}

func (r *CashRegisterRepo) GetByID(ctx context.Context, id string) (*entity.CashRegister, error) {
	var reg entity.CashRegister
	err := r.q.QueryRow(ctx,
		`SELECT id, center_id, name, kind, active, created_at FROM cash_registers WHERE id = $1`, id,
	).Scan(&reg.ID, &reg.CenterID, &reg.Name, &reg.Kind, &reg.Active, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get cash register", err)
	}
	return &reg, nil
}

// CashSessionRepo jornadas de caja. ux_cash_session_open impide dos jornadas OUVERTE por caja.
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

const sessionColumns = `id, register_id, statut, opening_balance, opened_at, opened_by,
	cash_in, cash_out, card_sales, cheque_sales, wire_sales, internal_in, internal_out, expenses,
	actual_balance, ecart, justification, closed_at, closed_by, updated_at`

func scanSession(row pgx.Row) (*entity.CashSession, error) {
	var s entity.CashSession
	err := row.Scan(
		&s.ID, &s.RegisterID, &s.Statut, &s.OpeningBalance, &s.OpenedAt, &s.OpenedBy,
		&s.CashIn, &s.CashOut, &s.CardSales, &s.ChequeSales, &s.WireSales, &s.InternalIn, &s.InternalOut, &s.Expenses,
		&s.ActualBalance, &s.Ecart, &s.Justification, &s.ClosedAt, &s.ClosedBy, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CashSessionRepo) Create(ctx context.Context, s *entity.CashSession) error {
	query := `INSERT INTO cash_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.RegisterID, s.Statut, s.OpeningBalance, s.OpenedAt, s.OpenedBy,
		s.CashIn, s.CashOut, s.CardSales, s.ChequeSales, s.WireSales, s.InternalIn, s.InternalOut, s.Expenses,
		s.ActualBalance, s.Ecart, s.Justification, s.ClosedAt, s.ClosedBy, s.UpdatedAt,
	)
	return mapError("insert cash session", err)
}

func (r *CashSessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.getOne(ctx, "get cash session", `SELECT `+sessionColumns+` FROM cash_sessions WHERE id = $1`, id)
}

// GetForUpdate bloquea la jornada hasta el fin de la transacción.
func (r *CashSessionRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.getOne(ctx, "lock cash session", `SELECT `+sessionColumns+` FROM cash_sessions WHERE id = $1 FOR UPDATE`, id)
}

func (r *CashSessionRepo) GetOpenByRegister(ctx context.Context, registerID string) (*entity.CashSession, error) {
	return r.getOne(ctx, "get open cash session",
		`SELECT `+sessionColumns+` FROM cash_sessions WHERE register_id = $1 AND statut = 'OUVERTE'`, registerID)
}

func (r *CashSessionRepo) LastClosedByRegister(ctx context.Context, registerID string) (*entity.CashSession, error) {
	return r.getOne(ctx, "get last closed cash session",
		`SELECT `+sessionColumns+` FROM cash_sessions
		 WHERE register_id = $1 AND statut = 'FERMEE' ORDER BY closed_at DESC LIMIT 1`, registerID)
}

func (r *CashSessionRepo) Update(ctx context.Context, s *entity.CashSession) error {
	query := `
		UPDATE cash_sessions
		SET statut = $2, cash_in = $3, cash_out = $4, card_sales = $5, cheque_sales = $6, wire_sales = $7,
		    internal_in = $8, internal_out = $9, expenses = $10, actual_balance = $11, ecart = $12,
		    justification = $13, closed_at = $14, closed_by = $15, updated_at = $16
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		s.ID, s.Statut, s.CashIn, s.CashOut, s.CardSales, s.ChequeSales, s.WireSales,
		s.InternalIn, s.InternalOut, s.Expenses, s.ActualBalance, s.Ecart,
		s.Justification, s.ClosedAt, s.ClosedBy, s.UpdatedAt,
	)
	if err != nil {
		return mapError("update cash session", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("jornada", s.ID)
	}
	return nil
}

func (r *CashSessionRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.CashSession, error) {
	s, err := scanSession(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return s, nil
}

// CashOperationRepo operaciones de caja.
type CashOperationRepo struct {
	q Querier
}

// NewCashOperationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashOperationRepository(q Querier) *CashOperationRepo {
	return &CashOperationRepo{q: q}
}

const operationColumns = `id, session_id, type, classification, amount, means, invoice_id, reason, transfer_id, created_by, created_at`

func scanOperation(row pgx.Row) (*entity.CashOperation, error) {
	var (
		op         entity.CashOperation
		transferID *string
	)
	err := row.Scan(
		&op.ID, &op.SessionID, &op.Type, &op.Classification, &op.Amount, &op.Means,
		&op.InvoiceID, &op.Reason, &transferID, &op.CreatedBy, &op.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	op.TransferID = deref(transferID)
	return &op, nil
}

func (r *CashOperationRepo) Create(ctx context.Context, op *entity.CashOperation) error {
	query := `INSERT INTO cash_operations (` + operationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		op.ID, op.SessionID, op.Type, op.Classification, op.Amount, op.Means,
		op.InvoiceID, op.Reason, nullable(op.TransferID), op.CreatedBy, op.CreatedAt,
	)
	return mapError("insert cash operation", err)
}

func (r *CashOperationRepo) GetByID(ctx context.Context, id string) (*entity.CashOperation, error) {
	op, err := scanOperation(r.q.QueryRow(ctx, `SELECT `+operationColumns+` FROM cash_operations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get cash operation", err)
	}
	return op, nil
}

// ListBySession operaciones de la jornada en orden de registro.
func (r *CashOperationRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.CashOperation, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+operationColumns+` FROM cash_operations WHERE session_id = $1 ORDER BY seq`, sessionID)
	if err != nil {
		return nil, mapError("list cash operations", err)
	}
	defer rows.Close()
	list := []*entity.CashOperation{}
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash operation: %w", err)
		}
		list = append(list, op)
	}
	return list, rows.Err()
}

func (r *CashOperationRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM cash_operations WHERE id = $1`, id)
	if err != nil {
		return mapError("delete cash operation", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("operación de caja", id)
	}
	return nil
}
