package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/optica-core/internal/application/ports"
)

func getRedisClient(t *testing.T) *goredis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestIdempotencyStore_Ciclo(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	store := NewIdempotencyStore(client)
	key := "test-ciclo"
	client.Del(ctx, keyPrefix+key)

	ok, err := store.Reserve(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found, "reservada pero sin respuesta")

	require.NoError(t, store.Save(ctx, key, ports.StoredResponse{Status: 201, ContentType: "application/json", Body: []byte(`{"id":"x"}`)}, time.Minute))
	resp, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 201, resp.Status)
	assert.JSONEq(t, `{"id":"x"}`, string(resp.Body))

	require.NoError(t, store.Release(ctx, key))
	_, found, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIdempotencyStore_ReservaConcurrente(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	store := NewIdempotencyStore(client)
	key := "test-concurrente"
	client.Del(ctx, keyPrefix+key)
	defer client.Del(ctx, keyPrefix+key)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := store.Reserve(ctx, key, time.Minute); err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}
