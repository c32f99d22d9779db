package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/sift/pkg/adapters/redis"
	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/domain"
	"github.com/aretw0/sift/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	tests.RunDefinitionStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	store, mr := newStore(t, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	err := store.Save(ctx, "short-lived", &definition.Definition{Type: "string"})
	require.NoError(t, err)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "short-lived")

	// Key expiration is driven by miniredis time.
	mr.FastForward(2 * time.Second)

	_, err = store.Get(ctx, "short-lived")
	assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)

	// Index pruning is driven by wall-clock time.
	time.Sleep(1200 * time.Millisecond)

	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, "user", &definition.Definition{Type: "object"})
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:def:user"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, names)
}

func TestRedisStore_IndexNameDoesNotCollide(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "index", &definition.Definition{Type: "number"}))
	def, err := store.Get(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, "number", def.Type)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"index"}, names)
}

func TestRedisStore_Watch(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := store.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "user", &definition.Definition{Type: "string"}))
	require.NoError(t, store.Delete(ctx, "user"))

	for _, want := range []string{"user", "user"} {
		select {
		case got := <-changes:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for change notification")
		}
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after cancel")
		}
	}
}

func TestRedisStore_Ping(t *testing.T) {
	store, _ := newStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
