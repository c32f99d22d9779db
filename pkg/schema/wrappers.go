package schema

import (
	"errors"
	"fmt"
	"sync"
)

// NullableSchema accepts nil in addition to the values of the wrapped schema.
type NullableSchema struct {
	base
	inner Schema
}

func Nullable(s Schema) *NullableSchema {
	if s == nil {
		buildPanic("nullable", "schema is nil")
	}
	n := &NullableSchema{inner: s}
	n.self = n
	return n
}

func (s *NullableSchema) Kind() Kind     { return KindNullable }
func (s *NullableSchema) Name() string   { return s.inner.Name() + " | null" }
func (s *NullableSchema) Unwrap() Schema { return s.inner }

func (s *NullableSchema) clone() Schema {
	c := *s
	c.self = &c
	return &c
}

func (s *NullableSchema) check(v any, st state) (any, []Issue) {
	if isNull(v) {
		return nil, nil
	}
	return run(s.inner, v, st)
}

func (s *NullableSchema) inspect() *Descriptor {
	return &Descriptor{Kind: KindNullable, Name: s.Name(), Description: s.description, Inner: s.inner.inspect()}
}

// OptionalSchema accepts an absent value in addition to the values of the
// wrapped schema. Absent object fields stay absent in the output.
type OptionalSchema struct {
	base
	inner Schema
}

func Optional(s Schema) *OptionalSchema {
	if s == nil {
		buildPanic("optional", "schema is nil")
	}
	o := &OptionalSchema{inner: s}
	o.self = o
	return o
}

func (s *OptionalSchema) Kind() Kind     { return KindOptional }
func (s *OptionalSchema) Name() string   { return s.inner.Name() + " | undefined" }
func (s *OptionalSchema) Unwrap() Schema { return s.inner }

func (s *OptionalSchema) clone() Schema {
	c := *s
	c.self = &c
	return &c
}

func (s *OptionalSchema) check(v any, st state) (any, []Issue) {
	if IsUndefined(v) {
		return Undefined, nil
	}
	return run(s.inner, v, st)
}

func (s *OptionalSchema) inspect() *Descriptor {
	return &Descriptor{Kind: KindOptional, Name: s.Name(), Description: s.description, Inner: s.inner.inspect()}
}

// DefaultSchema substitutes a fallback for an absent value and validates it
// with the wrapped schema.
type DefaultSchema struct {
	base
	inner Schema
	value any
}

func Default(s Schema, value any) *DefaultSchema {
	if s == nil {
		buildPanic("default", "schema is nil")
	}
	d := &DefaultSchema{inner: s, value: value}
	d.self = d
	return d
}

func (s *DefaultSchema) Kind() Kind     { return KindDefault }
func (s *DefaultSchema) Name() string   { return s.inner.Name() }
func (s *DefaultSchema) Unwrap() Schema { return s.inner }

// Value returns the fallback.
func (s *DefaultSchema) Value() any { return s.value }

func (s *DefaultSchema) clone() Schema {
	c := *s
	c.self = &c
	return &c
}

func (s *DefaultSchema) check(v any, st state) (any, []Issue) {
	if IsUndefined(v) {
		v = s.value
	}
	return run(s.inner, v, st)
}

func (s *DefaultSchema) inspect() *Descriptor {
	return &Descriptor{
		Kind:        KindDefault,
		Name:        s.Name(),
		Description: s.description,
		Inner:       s.inner.inspect(),
		Default:     s.value,
	}
}

// RefinedSchema runs a predicate on the output of the wrapped schema. The
// predicate only runs when the wrapped schema succeeded.
type RefinedSchema struct {
	base
	inner     Schema
	predicate func(any) bool
	message   string
}

// Refine panics with a *BuildError when predicate is nil. An empty message
// defaults to "Invalid input".
func Refine(s Schema, predicate func(any) bool, message string) *RefinedSchema {
	if s == nil || predicate == nil {
		buildPanic("refine", "schema and predicate are required")
	}
	if message == "" {
		message = "Invalid input"
	}
	r := &RefinedSchema{inner: s, predicate: predicate, message: message}
	r.self = r
	return r
}

func (s *RefinedSchema) Kind() Kind     { return KindRefined }
func (s *RefinedSchema) Name() string   { return s.inner.Name() }
func (s *RefinedSchema) Unwrap() Schema { return s.inner }

// Message returns the issue message used when the predicate fails.
func (s *RefinedSchema) Message() string { return s.message }

func (s *RefinedSchema) clone() Schema {
	c := *s
	c.self = &c
	return &c
}

func (s *RefinedSchema) check(v any, st state) (any, []Issue) {
	out, issues := run(s.inner, v, st)
	if len(issues) > 0 || IsUndefined(out) {
		return out, issues
	}
	if !s.holds(out) {
		return nil, []Issue{{Code: CodeCustom, Message: s.message}}
	}
	return out, nil
}

// holds evaluates the predicate; a panic counts as a failure.
func (s *RefinedSchema) holds(v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return s.predicate(v)
}

func (s *RefinedSchema) inspect() *Descriptor {
	return &Descriptor{
		Kind:        KindRefined,
		Name:        s.Name(),
		Description: s.description,
		Inner:       s.inner.inspect(),
		Message:     s.message,
	}
}

// TransformedSchema maps the output of the wrapped schema. It runs only
// when the wrapped schema succeeded.
type TransformedSchema struct {
	base
	inner  Schema
	mapper func(any) (any, error)
}

func Transform(s Schema, mapper func(any) (any, error)) *TransformedSchema {
	if s == nil || mapper == nil {
		buildPanic("transform", "schema and mapper are required")
	}
	t := &TransformedSchema{inner: s, mapper: mapper}
	t.self = t
	return t
}

func (s *TransformedSchema) Kind() Kind     { return KindTransformed }
func (s *TransformedSchema) Name() string   { return s.inner.Name() }
func (s *TransformedSchema) Unwrap() Schema { return s.inner }

func (s *TransformedSchema) clone() Schema {
	c := *s
	c.self = &c
	return &c
}

func (s *TransformedSchema) check(v any, st state) (any, []Issue) {
	out, issues := run(s.inner, v, st)
	if len(issues) > 0 || IsUndefined(out) {
		return out, issues
	}
	res, err := s.apply(out)
	if err != nil {
		return nil, []Issue{{Code: CodeTransformFailed, Message: "Transform failed: " + err.Error()}}
	}
	return res, nil
}

// apply runs the mapper, converting a panic into an error.
func (s *TransformedSchema) apply(v any) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return s.mapper(v)
}

func (s *TransformedSchema) inspect() *Descriptor {
	return &Descriptor{Kind: KindTransformed, Name: s.Name(), Description: s.description, Inner: s.inner.inspect()}
}

// LazySchema defers building its target until first use, which lets a
// schema refer to itself. The target is resolved once.
type LazySchema struct {
	base
	ref     string
	resolve func() Schema
}

func Lazy(fn func() Schema) *LazySchema {
	if fn == nil {
		buildPanic("lazy", "resolver is nil")
	}
	l := &LazySchema{resolve: sync.OnceValue(fn)}
	l.self = l
	return l
}

// Ref is a Lazy node carrying a name. Descriptors and OpenAPI output refer
// to the name instead of expanding the target.
func Ref(name string, fn func() Schema) *LazySchema {
	if name == "" {
		buildPanic("ref", "name is empty")
	}
	l := Lazy(fn)
	l.ref = name
	return l
}

func (s *LazySchema) Kind() Kind { return KindLazy }

func (s *LazySchema) Name() string {
	if s.ref != "" {
		return s.ref
	}
	return "lazy"
}

// RefName returns the name given to Ref, or "".
func (s *LazySchema) RefName() string { return s.ref }

// Resolve returns the target schema, building it on first call.
func (s *LazySchema) Resolve() Schema { return s.resolve() }

func (s *LazySchema) clone() Schema {
	c := *s
	c.self = &c
	return &c
}

func (s *LazySchema) check(v any, st state) (any, []Issue) {
	next, issues := st.enter()
	if issues != nil {
		return nil, issues
	}
	target := s.resolve()
	if target == nil {
		return nil, []Issue{{Code: CodeCustom, Message: fmt.Sprintf("Schema %s resolved to nil", s.Name())}}
	}
	return run(target, v, next)
}

func (s *LazySchema) inspect() *Descriptor {
	return &Descriptor{Kind: KindLazy, Name: s.Name(), Description: s.description, Ref: s.ref}
}

// Check adapts a typed predicate for Refine. Values of another type fail.
func Check[T any](fn func(T) bool) func(any) bool {
	return func(v any) bool {
		t, ok := v.(T)
		return ok && fn(t)
	}
}

// ErrUnexpectedType is returned by TransformFunc adapters for values of the
// wrong type.
var ErrUnexpectedType = errors.New("unexpected type")

// TransformFunc adapts a typed mapper for Transform.
func TransformFunc[T, R any](fn func(T) (R, error)) func(any) (any, error) {
	return func(v any) (any, error) {
		t, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrUnexpectedType, v)
		}
		return fn(t)
	}
}
