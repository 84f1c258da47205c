package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/optica-core/internal/application/dto"
	"github.com/jhoicas/optica-core/internal/application/inventory"
)

// LedgerHandler expone el libro de movimientos y el registro de movimientos simples.
type LedgerHandler struct {
	ledger   *inventory.LedgerUseCase
	movement *inventory.RegisterMovementUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(ledger *inventory.LedgerUseCase, movement *inventory.RegisterMovementUseCase) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, movement: movement}
}

// RecordMovements godoc
// @Summary      Historial de movimientos de un registro
// @Description  Incluye los movimientos donde el registro es contraparte; más recientes primero.
// @Tags         records
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del registro"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/records/{id}/movements [get]
func (h *LedgerHandler) RecordMovements(c *fiber.Ctx) error {
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", dto.DefaultPageSize),
		Offset: c.QueryInt("offset", 0),
	}.Normalize()
	list, err := h.ledger.HistoryByRecord(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: dto.ToMovementList(list),
		Page:  page.Response(len(list)),
	})
}

// Reconcile godoc
// @Summary      Conciliar registro contra el libro
// @Tags         records
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {object}  inventory.ReconcileResult
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/records/{id}/reconcile [get]
func (h *LedgerHandler) Reconcile(c *fiber.Ctx) error {
	res, err := h.ledger.ReconcileRecord(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// DocumentMovements godoc
// @Summary      Movimientos generados por un documento (factura, bon de livraison)
// @Tags         records
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {array}   dto.MovementResponse
// @Router       /api/documents/{id}/movements [get]
func (h *LedgerHandler) DocumentMovements(c *fiber.Ctx) error {
	list, err := h.ledger.HistoryByDocument(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToMovementList(list))
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "record_id o product_ref+warehouse_id, type, quantity, unit_cost (entradas)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *LedgerHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.movement.RegisterMovement(c.UserContext(), inventory.MovementInputDTO{
		RecordID:     in.RecordID,
		ProductRef:   in.ProductRef,
		Designation:  in.Designation,
		WarehouseID:  in.WarehouseID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		DocumentID:   in.DocumentID,
		DocumentType: in.DocumentType,
		Reason:       in.Reason,
		Actor:        GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(m))
}
