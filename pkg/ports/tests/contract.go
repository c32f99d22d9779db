package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/domain"
	"github.com/aretw0/sift/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefinition() *definition.Definition {
	min := 2.0
	return &definition.Definition{
		Type:        "object",
		Description: "contract sample",
		Strict:      true,
		Fields: definition.Fields{
			{Name: "name", Definition: &definition.Definition{Type: "string", Min: &min}},
			{Name: "role", Definition: &definition.Definition{Type: "enum", Values: []string{"admin", "user"}, Default: "user"}},
			{Name: "tags", Definition: &definition.Definition{Type: "array", Element: &definition.Definition{Type: "string"}, Optional: true}},
		},
	}
}

// RunDefinitionStoreContract verifies that a writable DefinitionStore adheres
// to the interface contract.
func RunDefinitionStoreContract(t *testing.T, store ports.DefinitionStore) {
	t.Helper()
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Get", func(t *testing.T) {
		def := sampleDefinition()
		require.NoError(t, store.Save(ctx, name, def), "Save should not return error")

		loaded, err := store.Get(ctx, name)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, "object", loaded.Type)
		assert.Equal(t, "contract sample", loaded.Description)
		require.Len(t, loaded.Fields, 3)
		assert.Equal(t, []string{"name", "role", "tags"}, []string{
			loaded.Fields[0].Name, loaded.Fields[1].Name, loaded.Fields[2].Name,
		}, "field order must survive a round trip")

		want, err := definition.Fingerprint(def)
		require.NoError(t, err)
		got, err := definition.Fingerprint(loaded)
		require.NoError(t, err)
		assert.Equal(t, want, got, "stored definition must be unchanged")
	})

	t.Run("Isolation", func(t *testing.T) {
		def := sampleDefinition()
		require.NoError(t, store.Save(ctx, name, def))
		def.Description = "mutated after save"

		loaded, err := store.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "contract sample", loaded.Description)

		loaded.Description = "mutated after get"
		again, err := store.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "contract sample", again.Description)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sampleDefinition()))
		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Get(ctx, name)
		assert.ErrorIs(t, err, domain.ErrDefinitionNotFound, "Get after Delete should return ErrDefinitionNotFound")

		assert.NoError(t, store.Delete(ctx, name), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-b"
		id2 := name + "-a"
		require.NoError(t, store.Save(ctx, id1, sampleDefinition()))
		require.NoError(t, store.Save(ctx, id2, sampleDefinition()))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsIncreasing(t, names, "names must be sorted")
	})
}

// RunReadOnlyStoreContract verifies a read-only DefinitionStore already
// seeded with the given definitions.
func RunReadOnlyStoreContract(t *testing.T, store ports.DefinitionStore, seeded map[string]*definition.Definition) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		for name, want := range seeded {
			got, err := store.Get(ctx, name)
			require.NoError(t, err, "unexpected error getting %s", name)

			wantPrint, err := definition.Fingerprint(want)
			require.NoError(t, err)
			gotPrint, err := definition.Fingerprint(got)
			require.NoError(t, err)
			assert.Equal(t, wantPrint, gotPrint, "definition mismatch for %s", name)
		}
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-definition")
		assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, names, len(seeded))
		for name := range seeded {
			assert.Contains(t, names, name)
		}
		assert.IsIncreasing(t, names)
	})

	t.Run("Writes Rejected", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(ctx, "new", sampleDefinition()), domain.ErrReadOnly)
		assert.ErrorIs(t, store.Delete(ctx, "new"), domain.ErrReadOnly)
	})
}
