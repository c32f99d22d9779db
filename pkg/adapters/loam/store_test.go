package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/sift/internal/testutils"
	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, files map[string]string) *Store {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t, loam.WithVersioning(false))
	testutils.WriteCatalog(t, tmpDir, files)
	return New(loam.NewTypedRepository[DefinitionMetadata](repo))
}

func TestStore_Contract(t *testing.T) {
	store := seed(t, map[string]string{
		"email.md": `---
schema:
  type: string
  format: email
---
An email address.`,
		"user.json": `{
  "name": "user",
  "schema": {"type": "object", "fields": {"age": {"type": "integer", "min": 18}}}
}`,
	})

	min := 18.0
	tests.RunReadOnlyStoreContract(t, store, map[string]*definition.Definition{
		"email": {Type: "string", Format: "email", Description: "An email address."},
		"user": {Type: "object", Fields: definition.Fields{
			{Name: "age", Definition: &definition.Definition{Type: "integer", Min: &min}},
		}},
	})
}

func TestStore_NameFromMetadata(t *testing.T) {
	store := seed(t, map[string]string{
		"v1-person.md": `---
name: person
schema:
  type: object
  description: A person
  fields:
    name: {type: string}
---
Body text loses to the schema description.`,
	})

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"person"}, names)

	def, err := store.Get(context.Background(), "person")
	require.NoError(t, err)
	assert.Equal(t, "A person", def.Description)
}

func TestStore_DetectsCollisions(t *testing.T) {
	store := seed(t, map[string]string{
		"foo.md":   "---\nschema: {type: string}\n---\n",
		"foo.json": `{"schema": {"type": "number"}}`,
	})

	_, err := store.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "foo")
}

func TestStore_RejectsInvalidSchema(t *testing.T) {
	store := seed(t, map[string]string{
		"bad.md": "---\nschema:\n  type: string\n  minimum: 3\n---\n",
	})

	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, definition.ErrInvalidDefinition)
}
