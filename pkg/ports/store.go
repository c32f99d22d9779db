package ports

import (
	"context"

	"github.com/aretw0/sift/pkg/definition"
)

// DefinitionStore persists named schema definitions.
// This lets a catalog be rebuilt from files, a database or a cache.
type DefinitionStore interface {
	// Get retrieves the definition stored under name.
	// Returns domain.ErrDefinitionNotFound if there is none.
	Get(ctx context.Context, name string) (*definition.Definition, error)

	// Save stores def under name, replacing any previous definition.
	// Read-only stores return domain.ErrReadOnly.
	Save(ctx context.Context, name string, def *definition.Definition) error

	// Delete removes the definition. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names in ascending order.
	List(ctx context.Context) ([]string, error)
}
