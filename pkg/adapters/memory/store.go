package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/domain"
)

// Store implements ports.DefinitionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*definition.Definition
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store, optionally seeded with definitions.
func NewStore(seed map[string]*definition.Definition) (*Store, error) {
	s := &Store{data: make(map[string]*definition.Definition, len(seed))}
	for name, def := range seed {
		if err := s.Save(context.Background(), name, def); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Save stores a copy of def, so later changes by the caller are not seen.
func (s *Store) Save(ctx context.Context, name string, def *definition.Definition) error {
	copied, err := def.Clone()
	if err != nil {
		return fmt.Errorf("memory save %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return nil
}

// Get returns a copy of the stored definition.
func (s *Store) Get(ctx context.Context, name string) (*definition.Definition, error) {
	s.mu.RLock()
	def, ok := s.data[name]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrDefinitionNotFound
	}
	return def.Clone()
}

// Delete removes the definition.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
