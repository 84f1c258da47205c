package dto

import inv "github.com/jhoicas/optica-core/internal/domain/inventory"

// Los límites de página son los del historial de movimientos.
const (
	DefaultPageSize = inv.DefaultHistoryLimit
	MaxPageSize     = inv.MaxHistoryLimit
)

// PageRequest ventana sobre el historial de movimientos (más recientes primero).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize acota la ventana: límite en [1, MaxPageSize] y offset no negativo.
func (p PageRequest) Normalize() PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Response describe la página devuelta. Si vino llena puede haber más filas: NextOffset apunta a la siguiente.
func (p PageRequest) Response(returned int) PageResponse {
	resp := PageResponse{Limit: p.Limit, Offset: p.Offset}
	if returned >= p.Limit {
		next := p.Offset + returned
		resp.NextOffset = &next
	}
	return resp
}

// PageResponse metadatos de página.
type PageResponse struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	NextOffset *int `json:"next_offset,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Field solo viene en errores de validación.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
