package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/sift/pkg/adapters/memory"
	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/domain"
	"github.com/aretw0/sift/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, name string) (*definition.Definition, error) {
	args := m.Called(ctx, name)
	def, _ := args.Get(0).(*definition.Definition)
	return def, args.Error(1)
}

func (m *mockStore) Save(ctx context.Context, name string, def *definition.Definition) error {
	return m.Called(ctx, name, def).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *mockStore) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func mustParse(t *testing.T, doc string) *definition.Definition {
	t.Helper()
	def, err := definition.Parse([]byte(doc), definition.FormatYAML)
	require.NoError(t, err)
	return def
}

func TestCatalog_RegisterAndValidate(t *testing.T) {
	var events []*domain.ValidationEvent
	c := New(WithHooks(domain.LifecycleHooks{
		OnValidate: func(_ context.Context, e *domain.ValidationEvent) { events = append(events, e) },
	}))
	require.NoError(t, c.Register("age", schema.Number().Int().Min(18)))

	res, err := c.Validate(context.Background(), "age", 21)
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = c.Validate(context.Background(), "age", 12.5)
	require.NoError(t, err)
	assert.False(t, res.Success)

	require.Len(t, events, 2)
	assert.Equal(t, "age", events[0].Schema)
	assert.Equal(t, "success", events[0].Outcome())
	assert.Equal(t, "failure", events[1].Outcome())
	assert.Equal(t, []string{"not_integer", "too_small"}, events[1].IssueCodes)
}

func TestCatalog_UnknownSchema(t *testing.T) {
	c := New()
	_, err := c.Validate(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)

	_, err = c.Describe("missing")
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}

func TestCatalog_RegisterRejectsBadInput(t *testing.T) {
	c := New()
	assert.Error(t, c.Register("", schema.String()))
	assert.Error(t, c.Register("x", nil))

	err := c.RegisterDefinition("x", &definition.Definition{Type: "tuple"})
	assert.ErrorIs(t, err, definition.ErrInvalidDefinition)
	assert.Zero(t, c.Len())
}

func TestCatalog_RegisterDefinition_Refs(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterDefinition("email", mustParse(t, "type: string\nformat: email")))
	require.NoError(t, c.RegisterDefinition("contact", mustParse(t, `
type: object
fields:
  primary: {ref: email}
  others:
    type: array
    element: {ref: email}
`)))

	res, err := c.Validate(context.Background(), "contact", map[string]any{
		"primary": "a@b.co",
		"others":  []any{"c@d.io", "nope"},
	})
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Equal(t, schema.Path{"others", 1}, res.Error.Issues[0].Path)

	err = c.RegisterDefinition("broken", mustParse(t, "ref: nowhere"))
	assert.ErrorIs(t, err, definition.ErrInvalidDefinition)
}

func TestCatalog_RecursiveDefinition(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterDefinition("category", mustParse(t, `
type: object
fields:
  name: {type: string}
  children:
    type: array
    element: {ref: category}
    optional: true
`)))

	input := map[string]any{
		"name": "root",
		"children": []any{
			map[string]any{"name": "leaf"},
			map[string]any{"name": 3},
		},
	}
	res, err := c.Validate(context.Background(), "category", input)
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Equal(t, schema.Path{"children", 1, "name"}, res.Error.Issues[0].Path)
}

func TestCatalog_Sync(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("List", ctx).Return([]string{"node", "tag"}, nil)
	store.On("Get", ctx, "node").Return(mustParse(t, `
type: object
fields:
  tags: {type: array, element: {ref: tag}}
  next: {ref: node, nullable: true}
`), nil)
	store.On("Get", ctx, "tag").Return(mustParse(t, "type: string\nmin: 1"), nil)

	var registered []string
	c := New(WithHooks(domain.LifecycleHooks{
		OnRegister: func(_ context.Context, e *domain.RegisterEvent) { registered = append(registered, e.Schema) },
	}))
	n, err := c.Sync(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"node", "tag"}, c.Names())
	assert.Equal(t, []string{"node", "tag"}, registered)
	store.AssertExpectations(t)

	res, err := c.Validate(ctx, "node", map[string]any{
		"tags": []any{"a"},
		"next": map[string]any{"tags": []any{""}, "next": nil},
	})
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Equal(t, schema.Path{"next", "tags", 0}, res.Error.Issues[0].Path)
}

func TestCatalog_SyncDropsDeletedDefinitions(t *testing.T) {
	ctx := context.Background()
	store, err := memory.NewStore(map[string]*definition.Definition{
		"a": {Type: "string"},
		"b": {Type: "number"},
	})
	require.NoError(t, err)

	c := New()
	require.NoError(t, c.Register("code", schema.Boolean()))
	require.NoError(t, c.RegisterDefinition("local", &definition.Definition{Type: "string"}))

	_, err = c.Sync(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "code", "local"}, c.Names())

	require.NoError(t, store.Delete(ctx, "b"))
	n, err := c.Sync(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a", "code", "local"}, c.Names())

	_, err = c.Validate(ctx, "b", 1)
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}

func TestCatalog_SyncRefsIgnoreRemovedDefinitions(t *testing.T) {
	ctx := context.Background()
	store, err := memory.NewStore(map[string]*definition.Definition{
		"tag":  {Type: "string"},
		"post": {Type: "array", Element: &definition.Definition{Ref: "tag"}},
	})
	require.NoError(t, err)

	c := New()
	_, err = c.Sync(ctx, store)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "tag"))
	_, err = c.Sync(ctx, store)
	require.Error(t, err)
	assert.ErrorIs(t, err, definition.ErrInvalidDefinition)
	assert.Equal(t, []string{"post", "tag"}, c.Names())
}

func TestCatalog_SyncIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("List", ctx).Return([]string{"good", "bad"}, nil)
	store.On("Get", ctx, "good").Return(&definition.Definition{Type: "string"}, nil)
	store.On("Get", ctx, "bad").Return(&definition.Definition{Ref: "unknown"}, nil)

	c := New()
	_, err := c.Sync(ctx, store)
	require.Error(t, err)
	assert.ErrorIs(t, err, definition.ErrInvalidDefinition)
	assert.Zero(t, c.Len())

	failing := new(mockStore)
	failing.On("List", ctx).Return(nil, errors.New("backend down"))
	_, err = c.Sync(ctx, failing)
	assert.ErrorContains(t, err, "backend down")
}

func TestCatalog_Describe(t *testing.T) {
	c := New()
	def := mustParse(t, "type: string\ndescription: An email\nformat: email")
	require.NoError(t, c.RegisterDefinition("email", def))
	require.NoError(t, c.Register("flag", schema.Boolean()))

	d, err := c.Describe("email")
	require.NoError(t, err)
	assert.Equal(t, schema.KindString, d.Schema.Kind)
	assert.Equal(t, "An email", d.Schema.Description)
	require.NotNil(t, d.Definition)
	want, err := definition.Fingerprint(def)
	require.NoError(t, err)
	assert.Equal(t, want, d.Fingerprint)

	d, err = c.Describe("flag")
	require.NoError(t, err)
	assert.Nil(t, d.Definition)
	assert.Len(t, d.Fingerprint, 64)
}

func TestCatalog_ReplaceFiresRegisterEvent(t *testing.T) {
	var events []*domain.RegisterEvent
	c := New(WithHooks(domain.LifecycleHooks{
		OnRegister: func(_ context.Context, e *domain.RegisterEvent) { events = append(events, e) },
	}))
	require.NoError(t, c.Register("x", schema.String()))
	require.NoError(t, c.Register("x", schema.Number()))

	require.Len(t, events, 2)
	assert.False(t, events[0].Replaced)
	assert.True(t, events[1].Replaced)
	assert.NotEqual(t, events[0].Fingerprint, events[1].Fingerprint)
}

func TestCatalog_ParseOptions(t *testing.T) {
	c := New(WithParseOptions(schema.WithMaxDepth(1)))
	require.NoError(t, c.Register("nested", schema.Array(schema.Array(schema.String()))))

	res, err := c.Validate(context.Background(), "nested", []any{[]any{"a"}})
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Equal(t, schema.CodeMaxDepthExceeded, res.Error.Issues[0].Code)
}

func TestCatalog_FollowRequiresWatchable(t *testing.T) {
	c := New()
	err := c.Follow(context.Background(), new(mockStore))
	assert.ErrorContains(t, err, "does not support watching")
}

func TestCatalog_ConcurrentUse(t *testing.T) {
	c := New()
	require.NoError(t, c.Register("s", schema.String()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Validate(context.Background(), "s", "x")
			_ = c.Register("s", schema.String().Min(1))
			_ = c.Names()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
