package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/optica-core/internal/application/dto"
	"github.com/jhoicas/optica-core/internal/application/inventory"
	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// TransferHandler maneja el protocolo de traslado entre almacenes (protegido).
type TransferHandler struct {
	uc   *inventory.TransferUseCase
	bulk *inventory.BulkUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase, bulk *inventory.BulkUseCase) *TransferHandler {
	return &TransferHandler{uc: uc, bulk: bulk}
}

// Initiate godoc
// @Summary      Reservar traslado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InitiateTransferRequest  true  "origen, destino (registro o almacén) y cantidad"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Initiate(c *fiber.Ctx) error {
	var in dto.InitiateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := h.uc.InitiateTransfer(c.UserContext(), inventory.InitiateTransferInput{
		SourceRecordID:         in.SourceRecordID,
		DestinationRecordID:    in.DestinationRecordID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Quantity:               in.Quantity,
		Reason:                 in.Reason,
		Actor:                  GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToTransferResponse(t))
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.GetTransfer(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// Ship godoc
// @Summary      Expedir traslado (RESERVED → SHIPPED)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	return h.respond(c, func() (*entity.Transfer, error) {
		return h.uc.ShipTransfer(c.UserContext(), c.Params("id"), GetUserID(c))
	})
}

// Receive godoc
// @Summary      Recibir traslado (SHIPPED → RECEIVED)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	return h.respond(c, func() (*entity.Transfer, error) {
		return h.uc.ReceiveTransfer(c.UserContext(), c.Params("id"), GetUserID(c))
	})
}

// Cancel godoc
// @Summary      Anular traslado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID del traslado"
// @Param        body  body  dto.CancelRequest  false  "motivo"
// @Success      200   {object}  dto.TransferResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	in, err := cancelBody(c)
	if err != nil {
		return badBody(c)
	}
	return h.respond(c, func() (*entity.Transfer, error) {
		return h.uc.CancelTransfer(c.UserContext(), c.Params("id"), GetUserID(c), in.Reason)
	})
}

// BulkShip godoc
// @Summary      Expedir varios traslados
// @Description  Cada traslado se procesa en su propia transacción; los fallos no revierten los éxitos.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkRequest  true  "transfer_ids"
// @Success      200   {object}  inventory.BulkResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers/bulk/ship [post]
func (h *TransferHandler) BulkShip(c *fiber.Ctx) error {
	var in dto.BulkRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.bulk.BulkShip(c.UserContext(), in.TransferIDs, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// BulkReceive godoc
// @Summary      Recibir varios traslados
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkRequest  true  "transfer_ids"
// @Success      200   {object}  inventory.BulkResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers/bulk/receive [post]
func (h *TransferHandler) BulkReceive(c *fiber.Ctx) error {
	var in dto.BulkRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.bulk.BulkReceive(c.UserContext(), in.TransferIDs, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// ActiveForWarehouse godoc
// @Summary      Traslados en curso de un almacén
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del almacén"
// @Success      200  {object}  dto.ActiveTransfersResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/transfers/active [get]
func (h *TransferHandler) ActiveForWarehouse(c *fiber.Ctx) error {
	out, err := h.uc.ListActiveTransfersForWarehouse(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ActiveTransfersResponse{
		WarehouseID: out.WarehouseID,
		Incoming:    dto.ToTransferList(out.Incoming),
		Outgoing:    dto.ToTransferList(out.Outgoing),
	})
}

// GetRecord godoc
// @Summary      Vista de disponibilidad de un registro
// @Tags         records
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {object}  dto.RecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/records/{id} [get]
func (h *TransferHandler) GetRecord(c *fiber.Ctx) error {
	v, err := h.uc.GetRecordView(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToRecordResponse(v))
}

// ShipFromRecord godoc
// @Summary      Expedir el traslado reservado del registro origen
// @Tags         records
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro origen"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/records/{id}/ship [post]
func (h *TransferHandler) ShipFromRecord(c *fiber.Ctx) error {
	return h.respond(c, func() (*entity.Transfer, error) {
		return h.uc.ShipFromRecord(c.UserContext(), c.Params("id"), GetUserID(c))
	})
}

// ReceiveIntoRecord godoc
// @Summary      Recibir el traslado entrante del registro destino
// @Tags         records
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro destino"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/records/{id}/receive [post]
func (h *TransferHandler) ReceiveIntoRecord(c *fiber.Ctx) error {
	return h.respond(c, func() (*entity.Transfer, error) {
		return h.uc.ReceiveIntoRecord(c.UserContext(), c.Params("id"), GetUserID(c))
	})
}

// CancelForRecord godoc
// @Summary      Anular el traslado activo del registro (origen o destino)
// @Tags         records
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID del registro"
// @Param        body  body  dto.CancelRequest  false  "motivo"
// @Success      200   {object}  dto.TransferResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/records/{id}/cancel [post]
func (h *TransferHandler) CancelForRecord(c *fiber.Ctx) error {
	in, err := cancelBody(c)
	if err != nil {
		return badBody(c)
	}
	return h.respond(c, func() (*entity.Transfer, error) {
		return h.uc.CancelForRecord(c.UserContext(), c.Params("id"), GetUserID(c), in.Reason)
	})
}

func (h *TransferHandler) respond(c *fiber.Ctx, op func() (*entity.Transfer, error)) error {
	t, err := op()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// cancelBody admite cuerpo vacío.
func cancelBody(c *fiber.Ctx) (dto.CancelRequest, error) {
	var in dto.CancelRequest
	if len(c.Body()) == 0 {
		return in, nil
	}
	err := c.BodyParser(&in)
	return in, err
}
