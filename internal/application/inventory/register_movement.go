package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
	inv "github.com/jhoicas/optica-core/internal/domain/inventory"
	"github.com/jhoicas/optica-core/internal/domain/repository"
	"github.com/jhoicas/optica-core/pkg/logger"
)

// RegisterMovementUseCase registra movimientos de stock fuera del protocolo de traslado
// (compras, ventas, ajustes, roturas, inventario, migración) de forma transaccional,
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner   TxRunner
	warehouses repository.WarehouseRepository
	log        *logger.Logger
	now        func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner, warehouses repository.WarehouseRepository, log *logger.Logger) *RegisterMovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RegisterMovementUseCase{
		txRunner:   txRunner,
		warehouses: warehouses,
		log:        log.Named("movements"),
		now:        time.Now,
	}
}

// MovementInputDTO entrada para registrar un movimiento.
// RecordID identifica la fila; si está vacío, ProductRef + WarehouseID la ubican
// (y ENTREE_ACHAT / RETOUR_CLIENT / MIGRATION la crean si no existe).
// Para INVENTAIRE, Quantity es la cantidad contada; para AJUSTEMENT lleva signo.
type MovementInputDTO struct {
	RecordID     string
	ProductRef   string
	Designation  string
	WarehouseID  string
	Type         string
	Quantity     decimal.Decimal
	UnitCost     *decimal.Decimal
	DocumentID   string
	DocumentType string
	Reason       string
	Actor        string
}

// RegisterMovement valida el tipo, bloquea la fila y aplica el efecto en la misma transacción.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*entity.StockMovement, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}
	if input.RecordID == "" {
		wh, err := uc.warehouses.GetByID(ctx, input.WarehouseID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.NotFound("almacén", input.WarehouseID)
		}
		if !wh.Active {
			return nil, domain.Invalid("warehouse_id", "el almacén "+wh.Label()+" está inactivo")
		}
	}

	now := uc.now()
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(r StockRepos) error {
		rec, err := uc.resolveRecord(ctx, r, input, now)
		if err != nil {
			return err
		}
		outgoing, err := r.Transfers.ListActiveOutgoing(ctx, rec.ID)
		if err != nil {
			return err
		}

		delta, err := applyMovement(rec, outgoing, input)
		if err != nil {
			return err
		}
		rec.QuantiteActuelle = rec.QuantiteActuelle.Add(delta)

		mov = &entity.StockMovement{
			ID:           uuid.New().String(),
			Type:         input.Type,
			RecordID:     rec.ID,
			ProductRef:   rec.ProductRef,
			Quantity:     input.Quantity,
			Delta:        delta,
			DocumentID:   input.DocumentID,
			DocumentType: input.DocumentType,
			Reason:       input.Reason,
			Actor:        input.Actor,
			CreatedAt:    now,
		}
		if delta.IsPositive() {
			mov.DestinationWarehouseID = rec.WarehouseID
		} else {
			mov.SourceWarehouseID = rec.WarehouseID
		}
		if err := r.Movements.Append(ctx, mov); err != nil {
			return err
		}
		return refreshStatut(ctx, r, rec, now)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("type", input.Type).Str("record_id", input.RecordID).Msg("movimiento rechazado")
		return nil, err
	}
	uc.log.Info().
		Str("type", mov.Type).
		Str("record_id", mov.RecordID).
		Str("delta", mov.Delta.String()).
		Str("document_id", mov.DocumentID).
		Msg("movimiento registrado")
	return mov, nil
}

func (uc *RegisterMovementUseCase) resolveRecord(ctx context.Context, r StockRepos, input MovementInputDTO, now time.Time) (*entity.InventoryRecord, error) {
	if input.RecordID != "" {
		rec, err := r.Records.GetForUpdate(ctx, input.RecordID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, domain.NotFound("registro", input.RecordID)
		}
		return rec, nil
	}
	if createsRecord(input.Type) {
		cost := decimal.Zero
		if input.UnitCost != nil {
			cost = *input.UnitCost
		}
		rec, err := findOrCreateRecord(ctx, r.Records, input.ProductRef, input.Designation, input.WarehouseID, cost, now)
		if err != nil {
			return nil, err
		}
		return r.Records.GetForUpdate(ctx, rec.ID)
	}
	rec, err := r.Records.FindByProduct(ctx, input.ProductRef, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.NotFound("registro", input.ProductRef+"@"+input.WarehouseID)
	}
	return r.Records.GetForUpdate(ctx, rec.ID)
}

// applyMovement devuelve el delta de on-hand y actualiza el costo promedio en entradas.
func applyMovement(rec *entity.InventoryRecord, outgoing []*entity.Transfer, input MovementInputDTO) (decimal.Decimal, error) {
	switch input.Type {
	case entity.MovementEntreeAchat, entity.MovementRetourClient, entity.MovementMigration:
		if input.UnitCost != nil {
			rec.UnitCost = inv.WeightedAverageCost(rec, input.Quantity, *input.UnitCost)
		}
		return input.Quantity, nil

	case entity.MovementSortieVente, entity.MovementCasse:
		// Las salidas no pueden consumir unidades ya prometidas a un traslado.
		available := inv.Available(rec, outgoing)
		if available.LessThan(input.Quantity) {
			return decimal.Zero, &domain.InsufficientStockError{RecordID: rec.ID, Available: available, Requested: input.Quantity}
		}
		return input.Quantity.Neg(), nil

	case entity.MovementAjustement:
		if rec.QuantiteActuelle.Add(input.Quantity).IsNegative() {
			return decimal.Zero, &domain.InsufficientStockError{RecordID: rec.ID, Available: rec.QuantiteActuelle, Requested: input.Quantity.Neg()}
		}
		return input.Quantity, nil

	case entity.MovementInventaire:
		return input.Quantity.Sub(rec.QuantiteActuelle), nil
	}
	return decimal.Zero, domain.Invalid("type", "tipo de movimiento no admitido: "+input.Type)
}

func validateMovement(input MovementInputDTO) error {
	if input.RecordID == "" && (input.ProductRef == "" || input.WarehouseID == "") {
		return domain.Invalid("record_id", "requerido (o product_ref + warehouse_id)")
	}
	switch input.Type {
	case entity.MovementEntreeAchat, entity.MovementRetourClient, entity.MovementMigration,
		entity.MovementSortieVente, entity.MovementCasse:
		if !input.Quantity.IsPositive() {
			return domain.Invalid("quantity", "debe ser positiva")
		}
	case entity.MovementAjustement:
		if input.Quantity.IsZero() {
			return domain.Invalid("quantity", "el ajuste no puede ser cero")
		}
		if input.Reason == "" {
			return domain.Invalid("reason", "obligatorio en ajustes")
		}
	case entity.MovementInventaire:
		if input.Quantity.IsNegative() {
			return domain.Invalid("quantity", "la cantidad contada no puede ser negativa")
		}
	case entity.MovementTransfertInit, entity.MovementTransfertSortie, entity.MovementTransfertEntree,
		entity.MovementReception, entity.MovementTransfertAnnule:
		return domain.Invalid("type", "los traslados se registran con el protocolo de traslado")
	default:
		return domain.Invalid("type", "tipo de movimiento desconocido: "+input.Type)
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return domain.Invalid("unit_cost", "no puede ser negativo")
	}
	return nil
}

func createsRecord(movType string) bool {
	return movType == entity.MovementEntreeAchat || movType == entity.MovementRetourClient || movType == entity.MovementMigration
}

// findOrCreateRecord devuelve la fila del producto en el almacén o la crea con cantidad cero.
func findOrCreateRecord(ctx context.Context, repo repository.InventoryRecordRepository, productRef, designation, warehouseID string, unitCost decimal.Decimal, now time.Time) (*entity.InventoryRecord, error) {
	rec, err := repo.FindByProduct(ctx, productRef, warehouseID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}
	rec = &entity.InventoryRecord{
		ID:               uuid.New().String(),
		ProductRef:       productRef,
		Designation:      designation,
		WarehouseID:      warehouseID,
		QuantiteActuelle: decimal.Zero,
		Statut:           entity.StatutEpuise,
		UnitCost:         unitCost,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
