package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// MovementRepository es el libro de movimientos: solo inserción y consulta.
// Las correcciones se registran como nuevas entradas compensatorias.
type MovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) error
	// ListByRecord devuelve los movimientos del registro (propio o contraparte), más recientes primero.
	// Omite los TRANSFERT_ENTREE con un RECEPTION del mismo traslado antes de aplicar limit/offset.
	ListByRecord(ctx context.Context, recordID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByDocument(ctx context.Context, documentID string) ([]*entity.StockMovement, error)
	SumDelta(ctx context.Context, recordID string) (decimal.Decimal, error)
}
