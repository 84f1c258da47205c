// Package redis guarda las claves de idempotencia de la API en Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/optica-core/internal/application/ports"
)

const (
	keyPrefix    = "idem:"
	pendingValue = "pending"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore implementa ports.IdempotencyStore con claves "idem:<key>" y TTL.
type IdempotencyStore struct {
	client *goredis.Client
}

// NewIdempotencyStore usa un cliente ya conectado (ver NewClient).
func NewIdempotencyStore(client *goredis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// NewClient abre el cliente y verifica la conexión con PING.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// Get devuelve la respuesta guardada. Una clave reservada sin respuesta aún cuenta como no encontrada.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.StoredResponse, bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if string(raw) == pendingValue {
		return nil, false, nil
	}
	var resp ports.StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, fmt.Errorf("respuesta idempotente corrupta: %w", err)
	}
	return &resp, true, nil
}

// Reserve marca la clave como en curso con SETNX; false si otra petición ya la tomó.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, keyPrefix+key, pendingValue, ttl).Result()
}

// Save reemplaza la reserva por la respuesta serializada en JSON.
func (s *IdempotencyStore) Save(ctx context.Context, key string, resp ports.StoredResponse, ttl time.Duration) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, raw, ttl).Err()
}

// Release borra la clave para que un reintento vuelva a ejecutar el handler.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
