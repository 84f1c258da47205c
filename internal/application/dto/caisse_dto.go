package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// OpenSessionRequest apertura de jornada. Sin opening_balance se usa el saldo sugerido.
type OpenSessionRequest struct {
	OpeningBalance *decimal.Decimal `json:"opening_balance,omitempty"`
}

// CashOperationRequest encaissement o décaissement en una jornada abierta.
type CashOperationRequest struct {
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Means          string          `json:"means"`
	Classification string          `json:"classification"`
	Reason         string          `json:"reason"`
	InvoiceID      string          `json:"invoice_id"`
}

// CashTransferRequest traslado de efectivo entre dos jornadas abiertas.
type CashTransferRequest struct {
	FromSessionID string          `json:"from_session_id"`
	ToSessionID   string          `json:"to_session_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
}

// CloseSessionRequest arqueo de cierre.
type CloseSessionRequest struct {
	ActualBalance decimal.Decimal `json:"actual_balance"`
	Justification string          `json:"justification"`
}

// SuggestedOpeningResponse saldo de apertura sugerido (último cierre de la caja).
type SuggestedOpeningResponse struct {
	RegisterID     string          `json:"register_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// CashSessionResponse jornada con sus totales.
type CashSessionResponse struct {
	ID                 string           `json:"id"`
	RegisterID         string           `json:"register_id"`
	Statut             string           `json:"statut"`
	OpeningBalance     decimal.Decimal  `json:"opening_balance"`
	CashIn             decimal.Decimal  `json:"cash_in"`
	CashOut            decimal.Decimal  `json:"cash_out"`
	CardSales          decimal.Decimal  `json:"card_sales"`
	ChequeSales        decimal.Decimal  `json:"cheque_sales"`
	WireSales          decimal.Decimal  `json:"wire_sales"`
	InternalIn         decimal.Decimal  `json:"internal_in"`
	InternalOut        decimal.Decimal  `json:"internal_out"`
	Expenses           decimal.Decimal  `json:"expenses"`
	TheoreticalBalance decimal.Decimal  `json:"theoretical_balance"`
	ActualBalance      *decimal.Decimal `json:"actual_balance,omitempty"`
	Ecart              *decimal.Decimal `json:"ecart,omitempty"`
	Justification      string           `json:"justification,omitempty"`
	OpenedAt           time.Time        `json:"opened_at"`
	OpenedBy           string           `json:"opened_by"`
	ClosedAt           *time.Time       `json:"closed_at,omitempty"`
	ClosedBy           string           `json:"closed_by,omitempty"`
}

// CashOperationResponse línea del libro de caja.
type CashOperationResponse struct {
	ID             string          `json:"id"`
	SessionID      string          `json:"session_id"`
	Type           string          `json:"type"`
	Classification string          `json:"classification"`
	Amount         decimal.Decimal `json:"amount"`
	Means          string          `json:"means"`
	InvoiceID      string          `json:"invoice_id,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	TransferID     string          `json:"transfer_id,omitempty"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CashTransferResponse las dos mitades de un traslado entre cajas.
type CashTransferResponse struct {
	TransferID string                `json:"transfer_id"`
	Outflow    CashOperationResponse `json:"outflow"`
	Inflow     CashOperationResponse `json:"inflow"`
}

func ToCashSessionResponse(s *entity.CashSession) CashSessionResponse {
	return CashSessionResponse{
		ID:                 s.ID,
		RegisterID:         s.RegisterID,
		Statut:             s.Statut,
		OpeningBalance:     s.OpeningBalance,
		CashIn:             s.CashIn,
		CashOut:            s.CashOut,
		CardSales:          s.CardSales,
		ChequeSales:        s.ChequeSales,
		WireSales:          s.WireSales,
		InternalIn:         s.InternalIn,
		InternalOut:        s.InternalOut,
		Expenses:           s.Expenses,
		TheoreticalBalance: s.TheoreticalBalance(),
		ActualBalance:      s.ActualBalance,
		Ecart:              s.Ecart,
		Justification:      s.Justification,
		OpenedAt:           s.OpenedAt,
		OpenedBy:           s.OpenedBy,
		ClosedAt:           s.ClosedAt,
		ClosedBy:           s.ClosedBy,
	}
}

func ToCashOperationResponse(op *entity.CashOperation) CashOperationResponse {
	return CashOperationResponse{
		ID:             op.ID,
		SessionID:      op.SessionID,
		Type:           op.Type,
		Classification: op.Classification,
		Amount:         op.Amount,
		Means:          op.Means,
		InvoiceID:      op.InvoiceID,
		Reason:         op.Reason,
		TransferID:     op.TransferID,
		CreatedBy:      op.CreatedBy,
		CreatedAt:      op.CreatedAt,
	}
}

func ToCashOperationList(list []*entity.CashOperation) []CashOperationResponse {
	out := make([]CashOperationResponse, 0, len(list))
	for _, op := range list {
		out = append(out, ToCashOperationResponse(op))
	}
	return out
}
