package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// LiteralSchema accepts exactly one scalar value. Numbers compare by value
// regardless of their Go type.
type LiteralSchema struct {
	base
	value   any
	message string
}

// Literal panics with a *BuildError unless value is nil, a string, a bool
// or a number.
func Literal(value any) *LiteralSchema {
	if !isScalar(value) {
		buildPanic("literal", "unsupported literal type %T", value)
	}
	s := &LiteralSchema{value: value}
	s.self = s
	return s
}

func (s *LiteralSchema) Kind() Kind { return KindLiteral }

func (s *LiteralSchema) Name() string { return formatScalar(s.value) }

// Value returns the accepted value.
func (s *LiteralSchema) Value() any { return s.value }

// WithMessage replaces the default mismatch message.
func (s *LiteralSchema) WithMessage(message string) *LiteralSchema {
	c := *s
	c.message = message
	c.self = &c
	return &c
}

func (s *LiteralSchema) clone() Schema {
	c := *s
	c.self = &c
	return &c
}

func (s *LiteralSchema) check(v any, _ state) (any, []Issue) {
	if scalarEqual(v, s.value) {
		return v, nil
	}
	msg := s.message
	if msg == "" {
		msg = "Invalid literal value, expected " + s.Name()
	}
	return nil, []Issue{{
		Code:     CodeInvalidLiteral,
		Message:  msg,
		Expected: s.Name(),
		Received: typeOf(v),
		Options:  []any{s.value},
	}}
}

func (s *LiteralSchema) inspect() *Descriptor {
	return &Descriptor{Kind: KindLiteral, Name: s.Name(), Description: s.description, Values: []any{s.value}}
}

// EnumSchema accepts one of a fixed list of strings.
type EnumSchema struct {
	base
	values  []string
	message string
}

// Enum panics with a *BuildError when values is empty or holds duplicates.
func Enum(values ...string) *EnumSchema {
	if len(values) == 0 {
		buildPanic("enum", "at least one value is required")
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			buildPanic("enum", "duplicate value %q", v)
		}
		seen[v] = struct{}{}
	}
	s := &EnumSchema{values: slices.Clone(values)}
	s.self = s
	return s
}

func (s *EnumSchema) Kind() Kind { return KindEnum }

func (s *EnumSchema) Name() string { return quoteList(s.values) }

// Options returns the accepted values in declaration order.
func (s *EnumSchema) Options() []string { return slices.Clone(s.values) }

// WithMessage replaces the default mismatch message.
func (s *EnumSchema) WithMessage(message string) *EnumSchema {
	c := s.copy()
	c.message = message
	return c
}

// Extract returns an enum restricted to values, which must all be options.
func (s *EnumSchema) Extract(values ...string) *EnumSchema {
	for _, v := range values {
		if !slices.Contains(s.values, v) {
			buildPanic("enum.extract", "%q is not an option", v)
		}
	}
	out := Enum(values...)
	out.description = s.description
	return out
}

// Exclude returns an enum without values.
func (s *EnumSchema) Exclude(values ...string) *EnumSchema {
	var keep []string
	for _, v := range s.values {
		if !slices.Contains(values, v) {
			keep = append(keep, v)
		}
	}
	out := Enum(keep...)
	out.description = s.description
	return out
}

func (s *EnumSchema) clone() Schema { return s.copy() }

func (s *EnumSchema) copy() *EnumSchema {
	c := *s
	c.values = slices.Clone(s.values)
	c.self = &c
	return &c
}

func (s *EnumSchema) check(v any, _ state) (any, []Issue) {
	str, ok := v.(string)
	if !ok {
		return nil, typeIssue(s, v)
	}
	if slices.Contains(s.values, str) {
		return str, nil
	}
	msg := s.message
	if msg == "" {
		msg = fmt.Sprintf("Invalid enum value. Expected %s, received '%s'", s.Name(), str)
	}
	options := make([]any, len(s.values))
	for i, o := range s.values {
		options[i] = o
	}
	return nil, []Issue{{
		Code:     CodeInvalidEnumValue,
		Message:  msg,
		Expected: s.Name(),
		Received: str,
		Options:  options,
	}}
}

func (s *EnumSchema) inspect() *Descriptor {
	values := make([]any, len(s.values))
	for i, v := range s.values {
		values[i] = v
	}
	return &Descriptor{Kind: KindEnum, Name: s.Name(), Description: s.description, Values: values}
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool:
		return true
	}
	_, ok := toFloat(v)
	return ok
}

// scalarEqual compares scalars, normalizing numbers to float64.
func scalarEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(t)
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, " | ")
}
