package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/optica-core/internal/domain"
)

func TestErroresEstructurados_Unwrap(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
		code     string
	}{
		{domain.NotFound("traslado", "x"), domain.ErrNotFound, "NOT_FOUND"},
		{domain.Conflict("ya abierta"), domain.ErrConflict, "CONFLICT"},
		{&domain.InsufficientStockError{RecordID: "A", Available: decimal.NewFromInt(1), Requested: decimal.NewFromInt(2)}, domain.ErrInsufficientStock, "INSUFFICIENT_STOCK"},
		{&domain.InvalidStateError{Entity: "traslado", ID: "x", State: "CANCELLED", Action: "cancel"}, domain.ErrInvalidState, "INVALID_STATE"},
		{&domain.InsufficientBalanceError{SessionID: "s"}, domain.ErrInsufficientBalance, "INSUFFICIENT_BALANCE"},
		{domain.Invalid("quantity", "debe ser positiva"), domain.ErrInvalidInput, "VALIDATION"},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("operación: %w", tc.err)
		assert.True(t, errors.Is(wrapped, tc.sentinel), "%v debe envolver %v", tc.err, tc.sentinel)
		assert.Equal(t, tc.code, domain.Code(wrapped))
	}
	assert.Equal(t, "INTERNAL", domain.Code(errors.New("boom")))
	assert.Equal(t, "", domain.Code(nil))
}
