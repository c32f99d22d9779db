package schema

import (
	"encoding/json"
	"fmt"
)

// Descriptor is a data-only view of a schema node, suitable for JSON output
// and for generators such as the OpenAPI exporter. Lazy nodes are not
// expanded, so descriptors of recursive schemas are finite.
type Descriptor struct {
	Kind          Kind              `json:"kind"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Constraints   []Constraint      `json:"constraints,omitempty"`
	Element       *Descriptor       `json:"element,omitempty"`
	Key           *Descriptor       `json:"key,omitempty"`
	Value         *Descriptor       `json:"value,omitempty"`
	Inner         *Descriptor       `json:"inner,omitempty"`
	Fields        []FieldDescriptor `json:"fields,omitempty"`
	Options       []*Descriptor     `json:"options,omitempty"`
	Discriminator string            `json:"discriminator,omitempty"`
	Values        []any             `json:"values,omitempty"`
	UnknownKeys   UnknownKeys       `json:"unknownKeys,omitempty"`
	Default       any               `json:"default,omitempty"`
	Coerce        bool              `json:"coerce,omitempty"`
	Message       string            `json:"message,omitempty"`
	Ref           string            `json:"ref,omitempty"`
}

// FieldDescriptor describes one object field.
type FieldDescriptor struct {
	Name     string      `json:"name"`
	Required bool        `json:"required"`
	Schema   *Descriptor `json:"schema"`
}

// Inspect returns the descriptor of s.
func Inspect(s Schema) *Descriptor {
	if s == nil {
		return nil
	}
	return s.inspect()
}

// MarshalDescriptor renders the descriptor of s as indented JSON.
func MarshalDescriptor(s Schema) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("schema: MarshalDescriptor on nil schema")
	}
	return json.MarshalIndent(s.inspect(), "", "  ")
}

// Refs lists the names of the Ref nodes reachable from d, in first-seen order.
func (d *Descriptor) Refs() []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(*Descriptor)
	walk = func(n *Descriptor) {
		if n == nil {
			return
		}
		if n.Ref != "" && !seen[n.Ref] {
			seen[n.Ref] = true
			out = append(out, n.Ref)
		}
		walk(n.Element)
		walk(n.Key)
		walk(n.Value)
		walk(n.Inner)
		for _, f := range n.Fields {
			walk(f.Schema)
		}
		for _, o := range n.Options {
			walk(o)
		}
	}
	walk(d)
	return out
}
