package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/optica-core/internal/application/caisse"
	"github.com/jhoicas/optica-core/internal/application/dto"
)

// CaisseHandler maneja las jornadas de caja (protegido, rol caissier o admin).
type CaisseHandler struct {
	uc      *caisse.SessionUseCase
	reports *caisse.ReportUseCase
}

// NewCaisseHandler construye el handler.
func NewCaisseHandler(uc *caisse.SessionUseCase, reports *caisse.ReportUseCase) *CaisseHandler {
	return &CaisseHandler{uc: uc, reports: reports}
}

// Open godoc
// @Summary      Abrir jornada
// @Tags         caisse
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true   "ID de la caja"
// @Param        body  body  dto.OpenSessionRequest  false  "opening_balance (por defecto, el último cierre)"
// @Success      201   {object}  dto.CashSessionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/caisse/registers/{id}/open [post]
func (h *CaisseHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	s, err := h.uc.Open(c.UserContext(), caisse.OpenSessionInput{
		RegisterID:     c.Params("id"),
		OpeningBalance: in.OpeningBalance,
		Cashier:        GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToCashSessionResponse(s))
}

// SuggestedOpening godoc
// @Summary      Saldo de apertura sugerido
// @Tags         caisse
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {object}  dto.SuggestedOpeningResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/caisse/registers/{id}/suggested-opening [get]
func (h *CaisseHandler) SuggestedOpening(c *fiber.Ctx) error {
	id := c.Params("id")
	amount, err := h.uc.SuggestedOpeningBalance(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuggestedOpeningResponse{RegisterID: id, OpeningBalance: amount})
}

// OpenSession godoc
// @Summary      Jornada abierta de una caja
// @Tags         caisse
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {object}  dto.CashSessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/caisse/registers/{id}/session [get]
func (h *CaisseHandler) OpenSession(c *fiber.Ctx) error {
	s, err := h.uc.GetOpenSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToCashSessionResponse(s))
}

// GetSession godoc
// @Summary      Obtener jornada
// @Tags         caisse
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la jornada"
// @Success      200  {object}  dto.CashSessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/caisse/sessions/{id} [get]
func (h *CaisseHandler) GetSession(c *fiber.Ctx) error {
	s, err := h.uc.GetSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToCashSessionResponse(s))
}

// RecordOperation godoc
// @Summary      Registrar encaissement o décaissement
// @Tags         caisse
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la jornada"
// @Param        body  body  dto.CashOperationRequest  true  "type, amount, means"
// @Success      201   {object}  dto.CashOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/caisse/sessions/{id}/operations [post]
func (h *CaisseHandler) RecordOperation(c *fiber.Ctx) error {
	var in dto.CashOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	op, err := h.uc.RecordOperation(c.UserContext(), caisse.RecordOperationInput{
		SessionID:      c.Params("id"),
		Type:           in.Type,
		Amount:         in.Amount,
		Means:          in.Means,
		Classification: in.Classification,
		Reason:         in.Reason,
		InvoiceID:      in.InvoiceID,
		Actor:          GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToCashOperationResponse(op))
}

// ListOperations godoc
// @Summary      Libro de caja de la jornada
// @Tags         caisse
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la jornada"
// @Success      200  {array}   dto.CashOperationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/caisse/sessions/{id}/operations [get]
func (h *CaisseHandler) ListOperations(c *fiber.Ctx) error {
	list, err := h.uc.ListOperations(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToCashOperationList(list))
}

// DeleteOperation godoc
// @Summary      Eliminar operación de caja
// @Description  Revierte los totales; no aplica a las mitades de un traslado entre cajas.
// @Tags         caisse
// @Security     Bearer
// @Param        id   path  string  true  "ID de la operación"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/caisse/operations/{id} [delete]
func (h *CaisseHandler) DeleteOperation(c *fiber.Ctx) error {
	if err := h.uc.DeleteOperation(c.UserContext(), c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Transfer godoc
// @Summary      Traslado de efectivo entre jornadas
// @Tags         caisse
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CashTransferRequest  true  "from_session_id, to_session_id, amount"
// @Success      201   {object}  dto.CashTransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/caisse/transfers [post]
func (h *CaisseHandler) Transfer(c *fiber.Ctx) error {
	var in dto.CashTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Transfer(c.UserContext(), caisse.TransferInput{
		Amount:        in.Amount,
		FromSessionID: in.FromSessionID,
		ToSessionID:   in.ToSessionID,
		Reason:        in.Reason,
		Actor:         GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CashTransferResponse{
		TransferID: res.TransferID,
		Outflow:    dto.ToCashOperationResponse(res.Outflow),
		Inflow:     dto.ToCashOperationResponse(res.Inflow),
	})
}

// Close godoc
// @Summary      Cerrar jornada con arqueo
// @Tags         caisse
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la jornada"
// @Param        body  body  dto.CloseSessionRequest  true  "actual_balance y justificación del ecart"
// @Success      200   {object}  dto.CashSessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/caisse/sessions/{id}/close [post]
func (h *CaisseHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.uc.Close(c.UserContext(), caisse.CloseSessionInput{
		SessionID:     c.Params("id"),
		ActualBalance: in.ActualBalance,
		Justification: in.Justification,
		Actor:         GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToCashSessionResponse(s))
}

// Report godoc
// @Summary      Informe PDF de la jornada (X si está abierta, Z si está cerrada)
// @Tags         caisse
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la jornada"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/caisse/sessions/{id}/report [get]
func (h *CaisseHandler) Report(c *fiber.Ctx) error {
	if h.reports == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "informes no configurados"})
	}
	id := c.Params("id")
	out, err := h.reports.Render(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="journee-`+id+`.pdf"`)
	return c.Send(out)
}
