package inventory

import "github.com/jhoicas/optica-core/internal/domain/entity"

// Ventana del historial de movimientos.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// DedupeTransferEntries oculta los TRANSFERT_ENTREE cuyo traslado ya tiene un RECEPTION
// en la misma lista (datos migrados que registraban ambas vistas de la misma entrada).
// Debe aplicarse antes de paginar.
func DedupeTransferEntries(list []*entity.StockMovement) []*entity.StockMovement {
	received := make(map[string]struct{})
	for _, m := range list {
		if m.Type == entity.MovementReception && m.TransferNumber != "" {
			received[m.TransferNumber] = struct{}{}
		}
	}
	out := make([]*entity.StockMovement, 0, len(list))
	for _, m := range list {
		if m.Type == entity.MovementTransfertEntree {
			if _, ok := received[m.TransferNumber]; ok {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}
