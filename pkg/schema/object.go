package schema

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"time"
)

// UnknownKeys is the policy an object applies to keys it does not declare.
type UnknownKeys string

const (
	// UnknownStrip drops undeclared keys from the output (the default).
	UnknownStrip UnknownKeys = "strip"
	// UnknownStrict reports undeclared keys as one unrecognized_keys issue.
	UnknownStrict UnknownKeys = "strict"
	// UnknownPassthrough copies undeclared keys to the output unchanged.
	UnknownPassthrough UnknownKeys = "passthrough"
)

// ObjectField is one named entry of an object shape.
type ObjectField struct {
	Name   string
	Schema Schema
}

// Field pairs a key with its schema for Object and Extend.
func Field(name string, s Schema) ObjectField {
	return ObjectField{Name: name, Schema: s}
}

// ObjectSchema accepts string-keyed maps and structs. Fields are validated in
// declaration order; the output is a map[string]any.
type ObjectSchema struct {
	base
	fields        []ObjectField
	index         map[string]int
	unknown       UnknownKeys
	strictMessage string
}

// Object panics with a *BuildError on unnamed, duplicate or nil fields.
func Object(fields ...ObjectField) *ObjectSchema {
	s := &ObjectSchema{unknown: UnknownStrip}
	s.setFields("object", fields)
	s.self = s
	return s
}

func (s *ObjectSchema) setFields(op string, fields []ObjectField) {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			buildPanic(op, "field %d has an empty name", i)
		}
		if f.Schema == nil {
			buildPanic(op, "field %q has a nil schema", f.Name)
		}
		if _, dup := index[f.Name]; dup {
			buildPanic(op, "duplicate field %q", f.Name)
		}
		index[f.Name] = i
	}
	s.fields = slices.Clone(fields)
	s.index = index
}

func (s *ObjectSchema) Kind() Kind   { return KindObject }
func (s *ObjectSchema) Name() string { return "object" }

// Shape returns the declared fields in order.
func (s *ObjectSchema) Shape() []ObjectField { return slices.Clone(s.fields) }

// Keys returns the declared field names in order.
func (s *ObjectSchema) Keys() []string {
	keys := make([]string, len(s.fields))
	for i, f := range s.fields {
		keys[i] = f.Name
	}
	return keys
}

// Get returns the schema of the named field.
func (s *ObjectSchema) Get(name string) (Schema, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i].Schema, true
}

// UnknownKeys returns the policy for undeclared keys.
func (s *ObjectSchema) UnknownKeys() UnknownKeys { return s.unknown }

func (s *ObjectSchema) clone() Schema { return s.copy() }

func (s *ObjectSchema) copy() *ObjectSchema {
	c := *s
	c.self = &c
	return &c
}

// Strict reports undeclared keys.
func (s *ObjectSchema) Strict(message ...string) *ObjectSchema {
	c := s.copy()
	c.unknown = UnknownStrict
	c.strictMessage = optMessage(message)
	return c
}

// Strip drops undeclared keys.
func (s *ObjectSchema) Strip() *ObjectSchema {
	c := s.copy()
	c.unknown = UnknownStrip
	return c
}

// Passthrough keeps undeclared keys.
func (s *ObjectSchema) Passthrough() *ObjectSchema {
	c := s.copy()
	c.unknown = UnknownPassthrough
	return c
}

// Extend adds fields; a field with an existing name replaces it in place.
func (s *ObjectSchema) Extend(fields ...ObjectField) *ObjectSchema {
	merged := slices.Clone(s.fields)
	for _, f := range fields {
		if i, ok := s.index[f.Name]; ok {
			merged[i] = f
			continue
		}
		merged = append(merged, f)
	}
	c := s.copy()
	c.setFields("object.extend", merged)
	return c
}

// Pick keeps only the named fields. Unknown names panic.
func (s *ObjectSchema) Pick(names ...string) *ObjectSchema {
	s.mustHave("object.pick", names)
	var kept []ObjectField
	for _, f := range s.fields {
		if slices.Contains(names, f.Name) {
			kept = append(kept, f)
		}
	}
	c := s.copy()
	c.setFields("object.pick", kept)
	return c
}

// Omit drops the named fields. Unknown names panic.
func (s *ObjectSchema) Omit(names ...string) *ObjectSchema {
	s.mustHave("object.omit", names)
	var kept []ObjectField
	for _, f := range s.fields {
		if !slices.Contains(names, f.Name) {
			kept = append(kept, f)
		}
	}
	c := s.copy()
	c.setFields("object.omit", kept)
	return c
}

// Partial makes every field optional.
func (s *ObjectSchema) Partial() *ObjectSchema {
	fields := make([]ObjectField, len(s.fields))
	for i, f := range s.fields {
		if f.Schema.Kind() != KindOptional {
			f.Schema = Optional(f.Schema)
		}
		fields[i] = f
	}
	c := s.copy()
	c.setFields("object.partial", fields)
	return c
}

func (s *ObjectSchema) mustHave(op string, names []string) {
	for _, n := range names {
		if _, ok := s.index[n]; !ok {
			buildPanic(op, "unknown field %q", n)
		}
	}
}

func (s *ObjectSchema) check(v any, st state) (any, []Issue) {
	m, ok := toObjectMap(v)
	if !ok {
		return nil, typeIssue(s, v)
	}
	next, issues := st.enter()
	if issues != nil {
		return nil, issues
	}

	var c Collector
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		val, present := m[f.Name]
		if !present {
			val = Undefined
		}
		o, iss := run(f.Schema, val, next)
		if len(iss) > 0 {
			c.Merge(f.Name, iss)
			continue
		}
		if !IsUndefined(o) {
			out[f.Name] = o
		}
	}

	if s.unknown != UnknownStrip {
		var extra []string
		for k := range m {
			if _, declared := s.index[k]; !declared {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		switch {
		case len(extra) == 0:
		case s.unknown == UnknownStrict:
			msg := s.strictMessage
			if msg == "" {
				msg = fmt.Sprintf("Unrecognized key(s) in object: '%s'", strings.Join(extra, "', '"))
			}
			c.Add(Issue{Code: CodeUnrecognizedKeys, Message: msg, Keys: extra})
		case s.unknown == UnknownPassthrough:
			for _, k := range extra {
				out[k] = m[k]
			}
		}
	}

	if c.Len() > 0 {
		return nil, c.Issues()
	}
	return out, nil
}

func (s *ObjectSchema) inspect() *Descriptor {
	fields := make([]FieldDescriptor, len(s.fields))
	for i, f := range s.fields {
		fields[i] = FieldDescriptor{
			Name:     f.Name,
			Required: !acceptsAbsent(f.Schema, 0),
			Schema:   f.Schema.inspect(),
		}
	}
	return &Descriptor{
		Kind:        KindObject,
		Name:        s.Name(),
		Description: s.description,
		Fields:      fields,
		UnknownKeys: s.unknown,
	}
}

// toObjectMap views string-keyed maps and structs as map[string]any. Structs
// are read through their `json` tags. Only the top level is converted so
// nested values are walked by the engine under its depth guard.
func toObjectMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, m != nil
	}
	if _, ok := v.(time.Time); ok {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	case reflect.Struct:
		out := make(map[string]any, rv.NumField())
		structFields(rv, out, map[reflect.Type]bool{})
		return out, true
	}
	return nil, false
}

// structFields copies the exported fields of rv into out, keyed like
// encoding/json keys them. Fields of embedded structs are promoted unless a
// shallower field already took the name.
func structFields(rv reflect.Value, out map[string]any, seen map[reflect.Type]bool) {
	t := rv.Type()
	if seen[t] {
		return
	}
	seen[t] = true

	var embedded []reflect.Value
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)

		if sf.Anonymous && name == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if fv.Kind() == reflect.Pointer {
					if fv.IsNil() {
						continue
					}
					fv = fv.Elem()
				}
				embedded = append(embedded, fv)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if hasOption(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}
		out[name] = fv.Interface()
	}

	for _, ev := range embedded {
		promoted := make(map[string]any)
		structFields(ev, promoted, seen)
		for k, val := range promoted {
			if _, taken := out[k]; !taken {
				out[k] = val
			}
		}
	}
}

func hasOption(opts, option string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == option {
			return true
		}
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
