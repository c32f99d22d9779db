package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/sift/pkg/adapters/memory"
	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store, err := memory.NewStore(nil)
	require.NoError(t, err)
	tests.RunDefinitionStoreContract(t, store)
}

func TestMemoryStore_Seed(t *testing.T) {
	store, err := memory.NewStore(map[string]*definition.Definition{
		"b": {Type: "string"},
		"a": {Type: "number"},
	})
	require.NoError(t, err)

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store, err := memory.NewStore(nil)
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Save(ctx, "shared", &definition.Definition{Type: "boolean"})
			_, _ = store.Get(ctx, "shared")
			_, _ = store.List(ctx)
		}()
	}
	wg.Wait()

	def, err := store.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, "boolean", def.Type)
}
