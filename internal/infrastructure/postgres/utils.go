package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/optica-core/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// mapError traduce los errores de PostgreSQL que el dominio sabe interpretar.
// Serialización, interbloqueo y lock_not_available se devuelven como ConflictError:
// el llamador decide si reintenta.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return domain.Conflict(op + ": contención de bloqueo (" + pgErr.Code + ")")
		case "23514":
			return domain.Invalid(pgErr.ConstraintName, "restricción de integridad: "+pgErr.Message)
		}
	}
	if isUniqueViolation(err) {
		name := ""
		if pgErr != nil {
			name = pgErr.ConstraintName
		}
		return domain.Conflict(op + ": " + constraintReason(name))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func constraintReason(name string) string {
	switch name {
	case "ux_transfer_active_destination":
		return "el destino ya tiene un traslado entrante activo"
	case "ux_cash_session_open":
		return "la caja ya tiene una jornada abierta"
	case "ux_warehouse_code":
		return "el código de almacén ya existe en el centro"
	case "ux_inventory_record_product":
		return "el almacén ya tiene una fila para el producto"
	}
	return "registro duplicado " + name
}

// nullable convierte "" en NULL para columnas de referencia opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
