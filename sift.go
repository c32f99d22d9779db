package sift

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	loamAdapter "github.com/aretw0/sift/pkg/adapters/loam"
	"github.com/aretw0/sift/pkg/catalog"
	"github.com/aretw0/sift/pkg/domain"
	"github.com/aretw0/sift/pkg/observability"
	"github.com/aretw0/sift/pkg/ports"
	"github.com/aretw0/sift/pkg/schema"
)

// Validator is the high-level entry point for the sift library.
// It wraps a catalog, the store its definitions come from and optional
// metrics behind a small API.
type Validator struct {
	catalog  *catalog.Catalog
	store    ports.DefinitionStore
	metrics  *observability.Metrics
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxDepth int
	Name     string
}

// Option defines a functional option for configuring the Validator.
type Option func(*Validator)

// WithStore loads the catalog from a definition store.
func WithStore(store ports.DefinitionStore) Option {
	return func(v *Validator) {
		v.store = store
	}
}

// WithMetrics records every validation and registration into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(v *Validator) {
		v.metrics = m
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(v *Validator) {
		v.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithMaxDepth bounds the nesting depth of validated inputs.
func WithMaxDepth(n int) Option {
	return func(v *Validator) {
		v.maxDepth = n
	}
}

// New creates a Validator. With a store, every definition of the store is
// compiled and registered before New returns.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}

	if v.logger == nil {
		v.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if v.Name != "" {
		v.logger = v.logger.With("catalog", v.Name)
	}

	hooks := v.hooks
	if v.metrics != nil {
		hooks = domain.ComposeHooks(v.metrics.Hooks(), v.hooks)
	}
	catalogOpts := []catalog.Option{
		catalog.WithHooks(hooks),
		catalog.WithLogger(v.logger),
	}
	if v.maxDepth > 0 {
		catalogOpts = append(catalogOpts, catalog.WithParseOptions(schema.WithMaxDepth(v.maxDepth)))
	}
	v.catalog = catalog.New(catalogOpts...)

	if v.store != nil {
		if _, err := v.catalog.Sync(context.Background(), v.store); err != nil {
			return nil, fmt.Errorf("failed to load definitions: %w", err)
		}
	}
	return v, nil
}

// Open creates a Validator over a directory of definition documents
// (YAML, JSON or Markdown with front matter).
func Open(dir string, opts ...Option) (*Validator, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	store, err := loamAdapter.Open(absPath)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{func(v *Validator) { v.Name = filepath.Base(absPath) }}, opts...)
	return New(append(opts, WithStore(store))...)
}

// Validate runs the named schema against input. The error is non-nil only
// when the schema is unknown.
func (v *Validator) Validate(ctx context.Context, name string, input any) (schema.Result, error) {
	return v.catalog.Validate(ctx, name, input)
}

// Register adds a schema built in code.
func (v *Validator) Register(name string, s schema.Schema) error {
	return v.catalog.Register(name, s)
}

// Reload re-reads every definition of the store.
func (v *Validator) Reload(ctx context.Context) (int, error) {
	if v.store == nil {
		return 0, fmt.Errorf("no definition store configured")
	}
	return v.catalog.Sync(ctx, v.store)
}

// Watch returns a channel that signals when a definition changes.
// Returns error if the store does not support watching.
func (v *Validator) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := v.store.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current store does not support watching")
}

// Follow reloads the catalog on every change of the store until ctx is done.
func (v *Validator) Follow(ctx context.Context) error {
	if v.store == nil {
		return fmt.Errorf("no definition store configured")
	}
	return v.catalog.Follow(ctx, v.store)
}

// Catalog returns the underlying catalog.
func (v *Validator) Catalog() *catalog.Catalog {
	return v.catalog
}

// Store returns the definition store, or nil.
func (v *Validator) Store() ports.DefinitionStore {
	return v.store
}

// Metrics returns the configured metrics, or nil.
func (v *Validator) Metrics() *observability.Metrics {
	return v.metrics
}
