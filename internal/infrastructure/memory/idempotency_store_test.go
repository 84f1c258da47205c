package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/optica-core/internal/application/ports"
)

func TestIdempotencyStore_ReservaYExpiracion(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore()
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ok, _ := s.Reserve(ctx, "k", time.Hour)
	require.True(t, ok)
	ok, _ = s.Reserve(ctx, "k", time.Hour)
	assert.False(t, ok, "segunda reserva rechazada")

	require.NoError(t, s.Save(ctx, "k", ports.StoredResponse{Status: 200, Body: []byte("ok")}, time.Hour))
	resp, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ok", string(resp.Body))

	now = now.Add(2 * time.Hour)
	_, found, _ = s.Get(ctx, "k")
	assert.False(t, found, "expirada")
	ok, _ = s.Reserve(ctx, "k", time.Hour)
	assert.True(t, ok)
}
