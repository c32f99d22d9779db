package schema

import (
	"reflect"
	"slices"
	"strings"
)

// ArraySchema accepts Go slices and arrays whose elements all satisfy the
// element schema. The output is a []any of the validated elements.
type ArraySchema struct {
	base
	element Schema
	checks  []Constraint
}

func Array(element Schema) *ArraySchema {
	if element == nil {
		buildPanic("array", "element schema is nil")
	}
	s := &ArraySchema{element: element}
	s.self = s
	return s
}

func (s *ArraySchema) Kind() Kind { return KindArray }

func (s *ArraySchema) Name() string { return "[]" + group(s.element.Name()) }

// Element returns the schema applied to every element.
func (s *ArraySchema) Element() Schema { return s.element }

// Constraints returns the checks attached to the node.
func (s *ArraySchema) Constraints() []Constraint { return slices.Clone(s.checks) }

func (s *ArraySchema) clone() Schema { return s.copy() }

func (s *ArraySchema) copy() *ArraySchema {
	c := *s
	c.checks = slices.Clone(s.checks)
	c.self = &c
	return &c
}

func (s *ArraySchema) with(k Constraint) *ArraySchema {
	c := s.copy()
	c.checks = append(c.checks, k)
	return c
}

func (s *ArraySchema) Min(n int, message ...string) *ArraySchema {
	checkLength("array.min", s.checks, ConstraintMin, n)
	return s.with(Constraint{Kind: ConstraintMin, Bound: n, Message: optMessage(message)})
}

func (s *ArraySchema) Max(n int, message ...string) *ArraySchema {
	checkLength("array.max", s.checks, ConstraintMax, n)
	return s.with(Constraint{Kind: ConstraintMax, Bound: n, Message: optMessage(message)})
}

func (s *ArraySchema) Length(n int, message ...string) *ArraySchema {
	checkLength("array.length", s.checks, ConstraintLength, n)
	return s.with(Constraint{Kind: ConstraintLength, Bound: n, Message: optMessage(message)})
}

// Nonempty is Min(1).
func (s *ArraySchema) Nonempty(message ...string) *ArraySchema {
	return s.Min(1, message...)
}

func (s *ArraySchema) check(v any, st state) (any, []Issue) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, typeIssue(s, v)
	}
	next, issues := st.enter()
	if issues != nil {
		return nil, issues
	}

	var c Collector
	n := rv.Len()
	checkLengths(&c, s.checks, "Array", "element", n)

	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		o, iss := run(s.element, rv.Index(i).Interface(), next)
		if len(iss) > 0 {
			c.Merge(i, iss)
			continue
		}
		if IsUndefined(o) {
			o = nil
		}
		out = append(out, o)
	}
	if c.Len() > 0 {
		return nil, c.Issues()
	}
	return out, nil
}

func (s *ArraySchema) inspect() *Descriptor {
	return &Descriptor{
		Kind:        KindArray,
		Name:        s.Name(),
		Description: s.description,
		Constraints: s.Constraints(),
		Element:     s.element.inspect(),
	}
}

// group parenthesizes composite type names.
func group(name string) string {
	if strings.ContainsRune(name, ' ') {
		return "(" + name + ")"
	}
	return name
}
