package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/domain"
)

// Store adapts a Loam repository to the read-only side of
// ports.DefinitionStore. Save and Delete return domain.ErrReadOnly.
type Store struct {
	Repo *loam.TypedRepository[DefinitionMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[DefinitionMetadata]) *Store {
	return &Store{Repo: repo}
}

// Open initializes a strict, read-only Loam repository rooted at path.
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init loam catalog at %s: %w", absPath, err)
	}
	return New(loam.NewTypedRepository[DefinitionMetadata](repo)), nil
}

type entry struct {
	docID string
	def   *definition.Definition
}

// index reads every document, keyed by definition name.
func (s *Store) index(ctx context.Context) (map[string]entry, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make(map[string]entry, len(docs))
	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}
		if existing, ok := out[name]; ok {
			return nil, fmt.Errorf("collision detected: definition '%s' is defined in both '%s' and '%s'", name, existing.docID, doc.ID)
		}
		if len(doc.Data.Schema) == 0 {
			return nil, fmt.Errorf("%s: %w: missing schema", doc.ID, definition.ErrInvalidDefinition)
		}

		def, err := definition.FromMap(doc.Data.Schema)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.ID, err)
		}
		if def.Description == "" {
			def.Description = strings.TrimSpace(doc.Content)
		}
		out[name] = entry{docID: doc.ID, def: def}
	}
	return out, nil
}

// Get returns the definition named name.
func (s *Store) Get(ctx context.Context, name string) (*definition.Definition, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := idx[name]
	if !ok {
		return nil, domain.ErrDefinitionNotFound
	}
	return e.def, nil
}

// List returns every definition name, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Save(context.Context, string, *definition.Definition) error {
	return domain.ErrReadOnly
}

func (s *Store) Delete(context.Context, string) error {
	return domain.ErrReadOnly
}

// Watch implements ports.Watchable. It sends the document ID (without
// extension) of every changed file.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
