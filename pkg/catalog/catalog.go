package catalog

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/domain"
	"github.com/aretw0/sift/pkg/ports"
	"github.com/aretw0/sift/pkg/schema"
	"golang.org/x/crypto/blake2b"
)

// Catalog holds named schemas. Schemas come from code (Register) or from
// definitions (RegisterDefinition, Sync), and definitions may reference each
// other by name. Safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]*entry

	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	parseOpts []schema.Option
}

type entry struct {
	schema      schema.Schema
	def         *definition.Definition
	fingerprint string
	// synced marks entries owned by the last Sync; the next Sync drops
	// them when their definition is gone from the store.
	synced bool
}

// Option defines a functional option for configuring the Catalog.
type Option func(*Catalog)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Catalog) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithParseOptions sets the options passed to every validation.
func WithParseOptions(opts ...schema.Option) Option {
	return func(c *Catalog) {
		c.parseOpts = append(c.parseOpts, opts...)
	}
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{entries: make(map[string]*entry)}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Register adds a schema built in code, replacing any schema of that name.
func (c *Catalog) Register(name string, s schema.Schema) error {
	if name == "" {
		return fmt.Errorf("catalog: schema name is empty")
	}
	if s == nil {
		return fmt.Errorf("catalog: schema %q is nil", name)
	}
	fp, err := descriptorFingerprint(s)
	if err != nil {
		return err
	}
	c.put(context.Background(), name, &entry{schema: s, fingerprint: fp})
	return nil
}

// RegisterDefinition compiles def and registers the result. Refs must name
// a schema already in the catalog, or name itself.
func (c *Catalog) RegisterDefinition(name string, def *definition.Definition) error {
	if name == "" {
		return fmt.Errorf("catalog: schema name is empty")
	}
	e, err := c.compile(name, def, func(ref string) bool {
		if ref == name {
			return true
		}
		_, ok := c.Lookup(ref)
		return ok
	})
	if err != nil {
		return err
	}
	c.put(context.Background(), name, e)
	return nil
}

func (c *Catalog) compile(name string, def *definition.Definition, known func(string) bool) (*entry, error) {
	copied, err := def.Clone()
	if err != nil {
		return nil, err
	}
	s, err := definition.Compile(copied, c.resolver(known))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	fp, err := definition.Fingerprint(copied)
	if err != nil {
		return nil, err
	}
	return &entry{schema: s, def: copied, fingerprint: fp}, nil
}

// resolver binds refs by name. The target is looked up when the ref is
// first used, so definitions may be recursive or mutually recursive.
func (c *Catalog) resolver(known func(string) bool) definition.Resolver {
	return func(ref string) (schema.Schema, bool) {
		if !known(ref) {
			return nil, false
		}
		return schema.Ref(ref, func() schema.Schema {
			if s, ok := c.Lookup(ref); ok {
				return s
			}
			return schema.Any().Refine(func(any) bool { return false }, fmt.Sprintf("Unknown schema %q", ref))
		}), true
	}
}

func (c *Catalog) put(ctx context.Context, name string, e *entry) {
	c.mu.Lock()
	_, replaced := c.entries[name]
	c.entries[name] = e
	c.mu.Unlock()

	c.logger.Debug("Schema registered", "schema", name, "fingerprint", e.fingerprint, "replaced", replaced)
	if c.hooks.OnRegister != nil {
		c.hooks.OnRegister(ctx, &domain.RegisterEvent{
			EventBase:   domain.EventBase{Timestamp: time.Now(), Type: domain.EventRegister, Schema: name},
			Fingerprint: e.fingerprint,
			Replaced:    replaced,
		})
	}
}

// Lookup returns the schema registered under name.
func (c *Catalog) Lookup(name string) (schema.Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	return e.schema, true
}

// Names lists the registered names in ascending order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered schemas.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Validate runs the named schema against input. The error is non-nil only
// when no schema has that name; validation failures are reported in the Result.
func (c *Catalog) Validate(ctx context.Context, name string, input any) (schema.Result, error) {
	s, ok := c.Lookup(name)
	if !ok {
		return schema.Result{}, fmt.Errorf("%w: %s", domain.ErrSchemaNotFound, name)
	}

	start := time.Now()
	res := schema.SafeParse(s, input, c.parseOpts...)
	elapsed := time.Since(start)

	var codes []string
	if !res.Success {
		for _, issue := range res.Error.Issues {
			codes = append(codes, string(issue.Code))
		}
	}
	c.logger.Debug("Validation finished", "schema", name, "success", res.Success, "issues", len(codes), "duration", elapsed)

	if c.hooks.OnValidate != nil {
		c.hooks.OnValidate(ctx, &domain.ValidationEvent{
			EventBase:  domain.EventBase{Timestamp: start, Type: domain.EventValidate, Schema: name},
			Success:    res.Success,
			IssueCodes: codes,
			Duration:   elapsed,
		})
	}
	return res, nil
}

// Description is the introspection view of a registered schema.
type Description struct {
	Name        string                 `json:"name"`
	Fingerprint string                 `json:"fingerprint"`
	Schema      *schema.Descriptor     `json:"schema"`
	Definition  *definition.Definition `json:"definition,omitempty"`
}

// Describe returns the descriptor of the named schema, plus its definition
// when it was registered from one.
func (c *Catalog) Describe(name string) (*Description, error) {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSchemaNotFound, name)
	}

	d := &Description{Name: name, Fingerprint: e.fingerprint, Schema: schema.Inspect(e.schema)}
	if e.def != nil {
		def, err := e.def.Clone()
		if err != nil {
			return nil, err
		}
		d.Definition = def
	}
	return d, nil
}

// Sync compiles every definition of store and registers them together.
// Refs may point to any definition of the store or to a schema already in
// the catalog. Nothing changes if any definition fails. Schemas loaded by an
// earlier Sync whose definition is no longer in the store are removed;
// schemas registered directly are kept.
func (c *Catalog) Sync(ctx context.Context, store ports.DefinitionStore) (int, error) {
	names, err := store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("sync: %w", err)
	}

	pending := make(map[string]bool, len(names))
	for _, name := range names {
		pending[name] = true
	}
	known := func(ref string) bool {
		if pending[ref] {
			return true
		}
		c.mu.RLock()
		e, ok := c.entries[ref]
		c.mu.RUnlock()
		return ok && !e.synced
	}

	compiled := make(map[string]*entry, len(names))
	for _, name := range names {
		def, err := store.Get(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("sync %s: %w", name, err)
		}
		e, err := c.compile(name, def, known)
		if err != nil {
			return 0, fmt.Errorf("sync: %w", err)
		}
		e.synced = true
		compiled[name] = e
	}

	for _, name := range names {
		c.put(ctx, name, compiled[name])
	}

	var removed []string
	c.mu.Lock()
	for name, e := range c.entries {
		if e.synced && !pending[name] {
			delete(c.entries, name)
			removed = append(removed, name)
		}
	}
	c.mu.Unlock()
	sort.Strings(removed)
	for _, name := range removed {
		c.logger.Debug("Schema removed", "schema", name)
	}
	c.logger.Info("Catalog synced", "schemas", len(names), "removed", len(removed))
	return len(names), nil
}

// Follow re-syncs the catalog every time a watchable store reports a change,
// until ctx is done. Failed syncs are logged and leave the catalog unchanged.
func (c *Catalog) Follow(ctx context.Context, store ports.DefinitionStore) error {
	w, ok := store.(ports.Watchable)
	if !ok {
		return fmt.Errorf("store %T does not support watching", store)
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	for name := range changes {
		c.logger.Info("Definition changed", "name", name)
		if _, err := c.Sync(ctx, store); err != nil {
			c.logger.Error("Catalog reload failed", "err", err)
		}
	}
	return ctx.Err()
}

func descriptorFingerprint(s schema.Schema) (string, error) {
	data, err := schema.MarshalDescriptor(s)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
