package ports

import (
	"context"
	"time"
)

// StoredResponse respuesta HTTP guardada para reenviarla ante un reintento con la misma clave.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore guarda el resultado de las peticiones con cabecera Idempotency-Key.
// Reserve es atómico: solo una petición concurrente obtiene true para la misma clave.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*StoredResponse, bool, error)
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}
