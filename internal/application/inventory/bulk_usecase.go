package inventory

import (
	"context"

	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// BulkItemError error de un elemento del lote.
type BulkItemError struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkResult resultado de una operación masiva. Cada elemento se procesa en su propia
// transacción: los fallos se recogen aquí y no revierten los éxitos.
type BulkResult struct {
	SuccessCount int             `json:"success_count"`
	FailureCount int             `json:"failure_count"`
	Errors       []BulkItemError `json:"errors"`
}

// BulkUseCase aplica ship/receive a N traslados de forma independiente.
type BulkUseCase struct {
	transfers *TransferUseCase
}

// NewBulkUseCase construye el orquestador masivo.
func NewBulkUseCase(transfers *TransferUseCase) *BulkUseCase {
	return &BulkUseCase{transfers: transfers}
}

// BulkShip envía cada traslado de ids.
func (uc *BulkUseCase) BulkShip(ctx context.Context, ids []string, actor string) (*BulkResult, error) {
	return uc.run(ctx, ids, func(ctx context.Context, id string) (*entity.Transfer, error) {
		return uc.transfers.ShipTransfer(ctx, id, actor)
	})
}

// BulkReceive recibe cada traslado de ids.
func (uc *BulkUseCase) BulkReceive(ctx context.Context, ids []string, actor string) (*BulkResult, error) {
	return uc.run(ctx, ids, func(ctx context.Context, id string) (*entity.Transfer, error) {
		return uc.transfers.ReceiveTransfer(ctx, id, actor)
	})
}

func (uc *BulkUseCase) run(ctx context.Context, ids []string, op func(context.Context, string) (*entity.Transfer, error)) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, domain.Invalid("ids", "lista vacía")
	}
	res := &BulkResult{Errors: []BulkItemError{}}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		// Cancelación cooperativa: los elementos no procesados se informan como fallidos.
		if err := ctx.Err(); err != nil {
			res.FailureCount++
			res.Errors = append(res.Errors, BulkItemError{ID: id, Code: "CANCELLED", Message: err.Error()})
			continue
		}
		if _, err := op(ctx, id); err != nil {
			res.FailureCount++
			res.Errors = append(res.Errors, BulkItemError{ID: id, Code: domain.Code(err), Message: err.Error()})
			continue
		}
		res.SuccessCount++
	}
	return res, nil
}
