package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/optica-core/internal/application/dto"
	"github.com/jhoicas/optica-core/internal/domain"
)

// statusFor traduce el código de dominio al estado HTTP.
func statusFor(code string) int {
	switch code {
	case "VALIDATION":
		return fiber.StatusBadRequest
	case "NOT_FOUND":
		return fiber.StatusNotFound
	case "INVALID_STATE", "CONFLICT", "INSUFFICIENT_STOCK", "INSUFFICIENT_BALANCE":
		return fiber.StatusConflict
	case "FORBIDDEN":
		return fiber.StatusForbidden
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}

// writeError responde con el ErrorResponse del error de dominio. Los errores internos
// no exponen el detalle al cliente.
func writeError(c *fiber.Ctx, err error) error {
	code := domain.Code(err)
	status := statusFor(code)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	resp := dto.ErrorResponse{Code: code, Message: msg}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
		resp.Message = ve.Message
	}
	return c.Status(status).JSON(resp)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// ErrorHandler de Fiber para errores no manejados por los handlers (rutas inexistentes, panics recuperados).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "INTERNAL"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusBadRequest:
			code = "BAD_REQUEST"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return writeError(c, err)
}
