package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
	inv "github.com/jhoicas/optica-core/internal/domain/inventory"
	"github.com/jhoicas/optica-core/internal/domain/repository"
)

// LedgerUseCase expone las consultas del libro de movimientos.
type LedgerUseCase struct {
	records   repository.InventoryRecordRepository
	movements repository.MovementRepository
}

// NewLedgerUseCase construye el caso de uso de consulta.
func NewLedgerUseCase(records repository.InventoryRecordRepository, movements repository.MovementRepository) *LedgerUseCase {
	return &LedgerUseCase{records: records, movements: movements}
}

// ReconcileResult compara la cantidad actual con la suma de deltas del libro.
type ReconcileResult struct {
	RecordID   string          `json:"record_id"`
	OnHand     decimal.Decimal `json:"on_hand"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Difference decimal.Decimal `json:"difference"`
	Consistent bool            `json:"consistent"`
}

// HistoryByRecord devuelve los movimientos del registro, más recientes primero.
func (uc *LedgerUseCase) HistoryByRecord(ctx context.Context, recordID string, limit, offset int) ([]*entity.StockMovement, error) {
	rec, err := uc.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.NotFound("registro", recordID)
	}
	if limit <= 0 {
		limit = inv.DefaultHistoryLimit
	}
	if limit > inv.MaxHistoryLimit {
		limit = inv.MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	// El repositorio ya oculta las entradas duplicadas antes de aplicar LIMIT/OFFSET.
	return uc.movements.ListByRecord(ctx, recordID, limit, offset)
}

// HistoryByDocument devuelve los movimientos generados por un documento de compra o venta.
func (uc *LedgerUseCase) HistoryByDocument(ctx context.Context, documentID string) ([]*entity.StockMovement, error) {
	if documentID == "" {
		return nil, domain.Invalid("document_id", "requerido")
	}
	list, err := uc.movements.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return inv.DedupeTransferEntries(list), nil
}

// ReconcileRecord verifica que la suma de deltas del libro explique la cantidad actual.
func (uc *LedgerUseCase) ReconcileRecord(ctx context.Context, recordID string) (*ReconcileResult, error) {
	rec, err := uc.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.NotFound("registro", recordID)
	}
	sum, err := uc.movements.SumDelta(ctx, recordID)
	if err != nil {
		return nil, err
	}
	diff := rec.QuantiteActuelle.Sub(sum)
	return &ReconcileResult{
		RecordID:   recordID,
		OnHand:     rec.QuantiteActuelle,
		LedgerSum:  sum,
		Difference: diff,
		Consistent: diff.IsZero(),
	}, nil
}
