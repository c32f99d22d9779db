package schema

import (
	"fmt"
	"slices"
	"strings"
)

// UnionSchema accepts a value satisfying any of its options. Options are
// tried in order and the first success wins.
type UnionSchema struct {
	base
	options []Schema
}

// Union panics with a *BuildError when fewer than two options are given.
func Union(options ...Schema) *UnionSchema {
	if len(options) < 2 {
		buildPanic("union", "at least two options are required, got %d", len(options))
	}
	for i, o := range options {
		if o == nil {
			buildPanic("union", "option %d is nil", i)
		}
	}
	s := &UnionSchema{options: slices.Clone(options)}
	s.self = s
	return s
}

func (s *UnionSchema) Kind() Kind { return KindUnion }

func (s *UnionSchema) Name() string {
	names := make([]string, len(s.options))
	for i, o := range s.options {
		names[i] = o.Name()
	}
	return strings.Join(names, " | ")
}

// Options returns the alternatives in order.
func (s *UnionSchema) Options() []Schema { return slices.Clone(s.options) }

func (s *UnionSchema) clone() Schema {
	c := *s
	c.options = slices.Clone(s.options)
	c.self = &c
	return &c
}

// check reports a single invalid_union issue carrying the issues of every
// failed option when none succeeds.
func (s *UnionSchema) check(v any, st state) (any, []Issue) {
	branches := make([][]Issue, 0, len(s.options))
	for _, opt := range s.options {
		out, issues := run(opt, v, st)
		if len(issues) == 0 {
			return out, nil
		}
		branches = append(branches, issues)
	}
	return nil, []Issue{{
		Code:        CodeInvalidUnion,
		Message:     "Invalid input",
		Expected:    s.Name(),
		Received:    typeOf(v),
		UnionIssues: branches,
	}}
}

func (s *UnionSchema) inspect() *Descriptor {
	opts := make([]*Descriptor, len(s.options))
	for i, o := range s.options {
		opts[i] = o.inspect()
	}
	return &Descriptor{Kind: KindUnion, Name: s.Name(), Description: s.description, Options: opts}
}

// DiscriminatedUnionSchema selects one object option by the value of a
// discriminator key, so only that option is validated.
type DiscriminatedUnionSchema struct {
	base
	key     string
	options []*ObjectSchema
	lookup  map[any]*ObjectSchema
	values  []any
}

// DiscriminatedUnion panics with a *BuildError unless every option declares
// key as a literal or enum field, and no discriminator value repeats.
func DiscriminatedUnion(key string, options ...*ObjectSchema) *DiscriminatedUnionSchema {
	if key == "" {
		buildPanic("discriminated_union", "discriminator key is empty")
	}
	if len(options) < 2 {
		buildPanic("discriminated_union", "at least two options are required, got %d", len(options))
	}
	s := &DiscriminatedUnionSchema{key: key, lookup: make(map[any]*ObjectSchema)}
	for i, opt := range options {
		if opt == nil {
			buildPanic("discriminated_union", "option %d is nil", i)
		}
		field, ok := opt.Get(key)
		if !ok {
			buildPanic("discriminated_union", "option %d has no %q field", i, key)
		}
		vals := discriminatorValues(field)
		if len(vals) == 0 {
			buildPanic("discriminated_union", "option %d: %q must be a literal or enum", i, key)
		}
		for _, val := range vals {
			norm := normalizeKey(val)
			if _, dup := s.lookup[norm]; dup {
				buildPanic("discriminated_union", "duplicate discriminator value %s", formatScalar(val))
			}
			s.lookup[norm] = opt
			s.values = append(s.values, val)
		}
	}
	s.options = slices.Clone(options)
	s.self = s
	return s
}

func discriminatorValues(s Schema) []any {
	switch d := s.(type) {
	case *LiteralSchema:
		return []any{d.value}
	case *EnumSchema:
		out := make([]any, len(d.values))
		for i, v := range d.values {
			out[i] = v
		}
		return out
	}
	return nil
}

func normalizeKey(v any) any {
	if f, ok := toFloat(v); ok {
		return f
	}
	return v
}

func (s *DiscriminatedUnionSchema) Kind() Kind   { return KindDiscriminatedUnion }
func (s *DiscriminatedUnionSchema) Name() string { return "object" }

// Discriminator returns the key used to select an option.
func (s *DiscriminatedUnionSchema) Discriminator() string { return s.key }

// Options returns the object alternatives in order.
func (s *DiscriminatedUnionSchema) Options() []*ObjectSchema { return slices.Clone(s.options) }

func (s *DiscriminatedUnionSchema) clone() Schema {
	c := *s
	c.self = &c
	return &c
}

func (s *DiscriminatedUnionSchema) check(v any, st state) (any, []Issue) {
	m, ok := toObjectMap(v)
	if !ok {
		return nil, typeIssue(s, v)
	}
	var opt *ObjectSchema
	if d, present := m[s.key]; present && isScalar(d) {
		opt = s.lookup[normalizeKey(d)]
	}
	if opt == nil {
		names := make([]string, len(s.values))
		for i, val := range s.values {
			names[i] = formatScalar(val)
		}
		return nil, []Issue{{
			Code:    CodeInvalidDiscriminator,
			Path:    Path{s.key},
			Message: fmt.Sprintf("Invalid discriminator value. Expected %s", strings.Join(names, " | ")),
			Options: slices.Clone(s.values),
		}}
	}
	return run(opt, m, st)
}

func (s *DiscriminatedUnionSchema) inspect() *Descriptor {
	opts := make([]*Descriptor, len(s.options))
	for i, o := range s.options {
		opts[i] = o.inspect()
	}
	return &Descriptor{
		Kind:          KindDiscriminatedUnion,
		Name:          s.Name(),
		Description:   s.description,
		Discriminator: s.key,
		Options:       opts,
	}
}
