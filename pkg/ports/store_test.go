package ports_test

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/domain"
	"github.com/aretw0/sift/pkg/ports"
	"github.com/aretw0/sift/pkg/ports/tests"
)

// mapStore is the smallest DefinitionStore that satisfies the contract.
type mapStore struct {
	data     map[string]*definition.Definition
	readOnly bool
}

var _ ports.DefinitionStore = (*mapStore)(nil)

func (m *mapStore) Get(_ context.Context, name string) (*definition.Definition, error) {
	def, ok := m.data[name]
	if !ok {
		return nil, domain.ErrDefinitionNotFound
	}
	return def.Clone()
}

func (m *mapStore) Save(_ context.Context, name string, def *definition.Definition) error {
	if m.readOnly {
		return domain.ErrReadOnly
	}
	copied, err := def.Clone()
	if err != nil {
		return err
	}
	m.data[name] = copied
	return nil
}

func (m *mapStore) Delete(_ context.Context, name string) error {
	if m.readOnly {
		return domain.ErrReadOnly
	}
	delete(m.data, name)
	return nil
}

func (m *mapStore) List(context.Context) ([]string, error) {
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func TestDefinitionStore_Contract(t *testing.T) {
	tests.RunDefinitionStoreContract(t, &mapStore{data: map[string]*definition.Definition{}})
}

func TestReadOnlyStore_Contract(t *testing.T) {
	seeded := map[string]*definition.Definition{
		"email": {Type: "string", Format: "email"},
		"count": {Type: "integer", Nonnegative: true},
	}
	tests.RunReadOnlyStoreContract(t, &mapStore{data: seeded, readOnly: true}, seeded)
}
