package schema

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
)

// MapSchema accepts any Go map whose keys and values satisfy the key and
// value schemas. Entries are visited in a deterministic key order.
type MapSchema struct {
	base
	key    Schema
	value  Schema
	checks []Constraint
}

func Map(key, value Schema) *MapSchema {
	if key == nil || value == nil {
		buildPanic("map", "key and value schemas are required")
	}
	s := &MapSchema{key: key, value: value}
	s.self = s
	return s
}

func (s *MapSchema) Kind() Kind { return KindMap }

func (s *MapSchema) Name() string {
	return "map[" + s.key.Name() + "]" + group(s.value.Name())
}

func (s *MapSchema) KeySchema() Schema   { return s.key }
func (s *MapSchema) ValueSchema() Schema { return s.value }

// Constraints returns the checks attached to the node.
func (s *MapSchema) Constraints() []Constraint { return slices.Clone(s.checks) }

func (s *MapSchema) clone() Schema { return s.copy() }

func (s *MapSchema) copy() *MapSchema {
	c := *s
	c.checks = slices.Clone(s.checks)
	c.self = &c
	return &c
}

func (s *MapSchema) with(op string, k Constraint) *MapSchema {
	checkLength(op, s.checks, k.Kind, k.Bound.(int))
	c := s.copy()
	c.checks = append(c.checks, k)
	return c
}

func (s *MapSchema) Min(n int, message ...string) *MapSchema {
	return s.with("map.min", Constraint{Kind: ConstraintMin, Bound: n, Message: optMessage(message)})
}

func (s *MapSchema) Max(n int, message ...string) *MapSchema {
	return s.with("map.max", Constraint{Kind: ConstraintMax, Bound: n, Message: optMessage(message)})
}

func (s *MapSchema) Size(n int, message ...string) *MapSchema {
	return s.with("map.size", Constraint{Kind: ConstraintSize, Bound: n, Message: optMessage(message)})
}

// Nonempty is Min(1).
func (s *MapSchema) Nonempty(message ...string) *MapSchema { return s.Min(1, message...) }

// check validates every entry; key and value issues are both located at
// the entry's key. Keys that collide after transformation are reported as
// not_unique.
func (s *MapSchema) check(v any, st state) (any, []Issue) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, typeIssue(s, v)
	}
	next, issues := st.enter()
	if issues != nil {
		return nil, issues
	}

	var c Collector
	checkLengths(&c, s.checks, "Map", "entry", rv.Len())

	type entry struct{ key, value any }
	var entries []entry
	seen := make(map[any]struct{}, rv.Len())
	allStrings := true
	for _, k := range sortedKeys(rv) {
		kv := k.Interface()
		seg := MapKey{kv}
		ko, kiss := run(s.key, kv, next)
		vo, viss := run(s.value, rv.MapIndex(k).Interface(), next)
		c.Merge(seg, kiss)
		c.Merge(seg, viss)
		if len(kiss) > 0 || len(viss) > 0 {
			continue
		}
		if ko == nil || !reflect.TypeOf(ko).Comparable() {
			c.Add(Issue{Code: CodeInvalidType, Path: Path{seg}, Message: "Map key is not comparable", Received: typeOf(ko)})
			continue
		}
		if _, dup := seen[ko]; dup {
			c.Add(Issue{Code: CodeNotUnique, Path: Path{seg}, Message: fmt.Sprintf("Duplicate map key %v", ko)})
			continue
		}
		seen[ko] = struct{}{}
		if _, ok := ko.(string); !ok {
			allStrings = false
		}
		if IsUndefined(vo) {
			vo = nil
		}
		entries = append(entries, entry{ko, vo})
	}
	if c.Len() > 0 {
		return nil, c.Issues()
	}

	if allStrings {
		out := make(map[string]any, len(entries))
		for _, e := range entries {
			out[e.key.(string)] = e.value
		}
		return out, nil
	}
	out := make(map[any]any, len(entries))
	for _, e := range entries {
		out[e.key] = e.value
	}
	return out, nil
}

func (s *MapSchema) inspect() *Descriptor {
	return &Descriptor{
		Kind:        KindMap,
		Name:        s.Name(),
		Description: s.description,
		Constraints: s.Constraints(),
		Key:         s.key.inspect(),
		Value:       s.value.inspect(),
	}
}

// SetSchema accepts collections of unique elements: map[K]struct{},
// map[K]bool (members are the true entries) and duplicate-free slices.
// The output is a []any.
type SetSchema struct {
	base
	element Schema
	checks  []Constraint
}

func Set(element Schema) *SetSchema {
	if element == nil {
		buildPanic("set", "element schema is nil")
	}
	s := &SetSchema{element: element}
	s.self = s
	return s
}

func (s *SetSchema) Kind() Kind   { return KindSet }
func (s *SetSchema) Name() string { return "set[" + s.element.Name() + "]" }

// Element returns the schema applied to every member.
func (s *SetSchema) Element() Schema { return s.element }

// Constraints returns the checks attached to the node.
func (s *SetSchema) Constraints() []Constraint { return slices.Clone(s.checks) }

func (s *SetSchema) clone() Schema { return s.copy() }

func (s *SetSchema) copy() *SetSchema {
	c := *s
	c.checks = slices.Clone(s.checks)
	c.self = &c
	return &c
}

func (s *SetSchema) with(op string, k Constraint) *SetSchema {
	checkLength(op, s.checks, k.Kind, k.Bound.(int))
	c := s.copy()
	c.checks = append(c.checks, k)
	return c
}

func (s *SetSchema) Min(n int, message ...string) *SetSchema {
	return s.with("set.min", Constraint{Kind: ConstraintMin, Bound: n, Message: optMessage(message)})
}

func (s *SetSchema) Max(n int, message ...string) *SetSchema {
	return s.with("set.max", Constraint{Kind: ConstraintMax, Bound: n, Message: optMessage(message)})
}

func (s *SetSchema) Size(n int, message ...string) *SetSchema {
	return s.with("set.size", Constraint{Kind: ConstraintSize, Bound: n, Message: optMessage(message)})
}

// Nonempty is Min(1).
func (s *SetSchema) Nonempty(message ...string) *SetSchema { return s.Min(1, message...) }

func (s *SetSchema) check(v any, st state) (any, []Issue) {
	members, ok := setMembers(v)
	if !ok {
		return nil, typeIssue(s, v)
	}
	next, issues := st.enter()
	if issues != nil {
		return nil, issues
	}

	var c Collector
	dups := duplicates(members)
	checkLengths(&c, s.checks, "Set", "element", len(members)-len(dups))

	out := make([]any, 0, len(members))
	for i, m := range members {
		if dups[i] {
			c.Add(Issue{Code: CodeNotUnique, Path: Path{i}, Message: "Duplicate element in set"})
			continue
		}
		o, iss := run(s.element, m, next)
		if len(iss) > 0 {
			c.Merge(i, iss)
			continue
		}
		out = append(out, o)
	}
	if c.Len() > 0 {
		return nil, c.Issues()
	}
	return out, nil
}

func (s *SetSchema) inspect() *Descriptor {
	return &Descriptor{
		Kind:        KindSet,
		Name:        s.Name(),
		Description: s.description,
		Constraints: s.Constraints(),
		Element:     s.element.inspect(),
	}
}

// setMembers lists the members of a set-shaped value in deterministic order.
func setMembers(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	case reflect.Map:
		elem := rv.Type().Elem()
		switch {
		case elem.Kind() == reflect.Struct && elem.NumField() == 0:
			var out []any
			for _, k := range sortedKeys(rv) {
				out = append(out, k.Interface())
			}
			return out, true
		case elem.Kind() == reflect.Bool:
			var out []any
			for _, k := range sortedKeys(rv) {
				if rv.MapIndex(k).Bool() {
					out = append(out, k.Interface())
				}
			}
			return out, true
		}
	}
	return nil, false
}

// memberKey is the hashable form of a scalar member. Numbers of any Go
// type share one key per value, as they do for literals.
type memberKey struct {
	kind byte
	num  float64
	str  string
}

func keyOf(v any) (memberKey, bool) {
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) {
			return memberKey{}, false
		}
		return memberKey{kind: 'n', num: f}, true
	}
	switch x := v.(type) {
	case nil:
		return memberKey{kind: '0'}, true
	case string:
		return memberKey{kind: 's', str: x}, true
	case bool:
		if x {
			return memberKey{kind: 'b', num: 1}, true
		}
		return memberKey{kind: 'b'}, true
	}
	return memberKey{}, false
}

// duplicates returns the indexes of members equal to an earlier member.
// Scalars are hashed; other values fall back to reflect.DeepEqual against
// the earlier non-scalar members.
func duplicates(members []any) map[int]bool {
	dups := make(map[int]bool)
	seen := make(map[memberKey]struct{}, len(members))
	var others []any
	for i, m := range members {
		if k, ok := keyOf(m); ok {
			if _, dup := seen[k]; dup {
				dups[i] = true
				continue
			}
			seen[k] = struct{}{}
			continue
		}
		if slices.ContainsFunc(others, func(x any) bool { return reflect.DeepEqual(x, m) }) {
			dups[i] = true
			continue
		}
		others = append(others, m)
	}
	return dups
}

// sortedKeys orders map keys by their printed form.
func sortedKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	sort.SliceStable(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	return keys
}
