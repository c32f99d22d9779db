package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
)

// Kind identifies the variant of a schema node.
type Kind string

const (
	KindString             Kind = "string"
	KindNumber             Kind = "number"
	KindBoolean            Kind = "boolean"
	KindDate               Kind = "date"
	KindLiteral            Kind = "literal"
	KindEnum               Kind = "enum"
	KindAny                Kind = "any"
	KindArray              Kind = "array"
	KindObject             Kind = "object"
	KindUnion              Kind = "union"
	KindDiscriminatedUnion Kind = "discriminated_union"
	KindMap                Kind = "map"
	KindSet                Kind = "set"
	KindRefined            Kind = "refined"
	KindTransformed        Kind = "transformed"
	KindNullable           Kind = "nullable"
	KindOptional           Kind = "optional"
	KindDefault            Kind = "default"
	KindLazy               Kind = "lazy"
)

// Schema defines the contract shared by every node of a schema tree.
//
// Nodes are immutable: every modifier returns a new node and leaves the
// receiver untouched, so a tree can be shared by concurrent validations.
type Schema interface {
	// Kind returns the variant tag of the node.
	Kind() Kind
	// Name returns the human-readable type name (e.g., "string", "[]number").
	Name() string
	// Description returns the text attached with Describe, if any.
	Description() string

	// Describe returns a copy of the node carrying a description.
	Describe(text string) Schema
	// Nullable accepts nil in addition to the node's own values.
	Nullable() Schema
	// Optional accepts an absent value in addition to the node's own values.
	Optional() Schema
	// Default substitutes value when the input is absent.
	Default(value any) Schema
	// Refine attaches a predicate evaluated after the node succeeds.
	Refine(predicate func(any) bool, message string) Schema
	// Transform maps the validated value into a new output value.
	Transform(mapper func(any) (any, error)) Schema

	// SafeParse validates input and never panics.
	SafeParse(input any, opts ...Option) Result
	// Parse validates input and returns a *ValidationError on failure.
	Parse(input any, opts ...Option) (any, error)

	check(value any, st state) (any, []Issue)
	clone() Schema
	meta() *base
	inspect() *Descriptor
}

// base carries the state shared by every node and implements the modifiers
// that do not depend on the concrete variant.
type base struct {
	self        Schema
	description string
}

func (b *base) meta() *base { return b }

func (b *base) Description() string { return b.description }

func (b *base) Describe(text string) Schema {
	c := b.self.clone()
	c.meta().description = text
	return c
}

func (b *base) Nullable() Schema { return Nullable(b.self) }

func (b *base) Optional() Schema { return Optional(b.self) }

func (b *base) Default(value any) Schema { return Default(b.self, value) }

func (b *base) Refine(predicate func(any) bool, message string) Schema {
	return Refine(b.self, predicate, message)
}

func (b *base) Transform(mapper func(any) (any, error)) Schema {
	return Transform(b.self, mapper)
}

func (b *base) SafeParse(input any, opts ...Option) Result {
	return SafeParse(b.self, input, opts...)
}

func (b *base) Parse(input any, opts ...Option) (any, error) {
	return Parse(b.self, input, opts...)
}

// undefined marks a value that is absent from its container.
type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the value objects hand to field schemas for missing keys.
// Pass it to SafeParse to validate an absent value.
var Undefined any = undefined{}

// IsUndefined reports whether v is the absent marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// isNull reports whether v is nil or a nil pointer, map, slice or interface.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// indirect dereferences non-nil pointers; nil pointers become nil.
func indirect(v any) any {
	for {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
}

// toFloat converts any Go numeric value (or json.Number) to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// typeOf names the runtime type of an input value for issue reporting.
func typeOf(v any) string {
	if IsUndefined(v) {
		return "undefined"
	}
	if isNull(v) {
		return "null"
	}
	switch t := v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case time.Time:
		return "date"
	case json.Number:
		if _, err := t.Float64(); err != nil {
			return "string"
		}
		return "number"
	}
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) {
			return "nan"
		}
		return "number"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return "object"
		}
		return "map"
	case reflect.Struct:
		return "object"
	case reflect.Func:
		return "function"
	}
	return fmt.Sprintf("%T", v)
}
