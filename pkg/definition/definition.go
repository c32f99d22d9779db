package definition

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is the declarative form of a schema. Documents are written in
// YAML or JSON and compiled into schema trees with Compile.
type Definition struct {
	Type        string `yaml:"type,omitempty" json:"type,omitempty" mapstructure:"type"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`
	// Ref names another definition of the same catalog.
	Ref string `yaml:"ref,omitempty" json:"ref,omitempty" mapstructure:"ref"`

	Nullable bool `yaml:"nullable,omitempty" json:"nullable,omitempty" mapstructure:"nullable"`
	Optional bool `yaml:"optional,omitempty" json:"optional,omitempty" mapstructure:"optional"`
	Default  any  `yaml:"default,omitempty" json:"default,omitempty" mapstructure:"default"`

	// Message replaces the mismatch message of literals and enums and the
	// unrecognized-keys message of strict objects.
	Message string `yaml:"message,omitempty" json:"message,omitempty" mapstructure:"message"`
	// Messages overrides constraint messages, keyed by constraint name (min, regex, ...).
	Messages map[string]string `yaml:"messages,omitempty" json:"messages,omitempty" mapstructure:"messages"`

	Min        *float64 `yaml:"min,omitempty" json:"min,omitempty" mapstructure:"min"`
	Max        *float64 `yaml:"max,omitempty" json:"max,omitempty" mapstructure:"max"`
	Length     *float64 `yaml:"length,omitempty" json:"length,omitempty" mapstructure:"length"`
	Size       *float64 `yaml:"size,omitempty" json:"size,omitempty" mapstructure:"size"`
	Gt         *float64 `yaml:"gt,omitempty" json:"gt,omitempty" mapstructure:"gt"`
	Gte        *float64 `yaml:"gte,omitempty" json:"gte,omitempty" mapstructure:"gte"`
	Lt         *float64 `yaml:"lt,omitempty" json:"lt,omitempty" mapstructure:"lt"`
	Lte        *float64 `yaml:"lte,omitempty" json:"lte,omitempty" mapstructure:"lte"`
	MultipleOf *float64 `yaml:"multiple_of,omitempty" json:"multiple_of,omitempty" mapstructure:"multiple_of"`

	Int         bool `yaml:"int,omitempty" json:"int,omitempty" mapstructure:"int"`
	Positive    bool `yaml:"positive,omitempty" json:"positive,omitempty" mapstructure:"positive"`
	Nonnegative bool `yaml:"nonnegative,omitempty" json:"nonnegative,omitempty" mapstructure:"nonnegative"`
	Negative    bool `yaml:"negative,omitempty" json:"negative,omitempty" mapstructure:"negative"`
	Nonpositive bool `yaml:"nonpositive,omitempty" json:"nonpositive,omitempty" mapstructure:"nonpositive"`
	Finite      bool `yaml:"finite,omitempty" json:"finite,omitempty" mapstructure:"finite"`

	Regex      string `yaml:"regex,omitempty" json:"regex,omitempty" mapstructure:"regex"`
	Format     string `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format"`
	StartsWith string `yaml:"starts_with,omitempty" json:"starts_with,omitempty" mapstructure:"starts_with"`
	EndsWith   string `yaml:"ends_with,omitempty" json:"ends_with,omitempty" mapstructure:"ends_with"`
	Includes   string `yaml:"includes,omitempty" json:"includes,omitempty" mapstructure:"includes"`

	MinDate string `yaml:"min_date,omitempty" json:"min_date,omitempty" mapstructure:"min_date"`
	MaxDate string `yaml:"max_date,omitempty" json:"max_date,omitempty" mapstructure:"max_date"`
	Coerce  bool   `yaml:"coerce,omitempty" json:"coerce,omitempty" mapstructure:"coerce"`

	Value  any      `yaml:"value,omitempty" json:"value,omitempty" mapstructure:"value"`
	Values []string `yaml:"values,omitempty" json:"values,omitempty" mapstructure:"values"`

	Element     *Definition `yaml:"element,omitempty" json:"element,omitempty" mapstructure:"element"`
	Key         *Definition `yaml:"key,omitempty" json:"key,omitempty" mapstructure:"key"`
	ValueSchema *Definition `yaml:"value_schema,omitempty" json:"value_schema,omitempty" mapstructure:"value_schema"`

	Fields      Fields `yaml:"fields,omitempty" json:"fields,omitempty" mapstructure:"fields"`
	Strict      bool   `yaml:"strict,omitempty" json:"strict,omitempty" mapstructure:"strict"`
	Passthrough bool   `yaml:"passthrough,omitempty" json:"passthrough,omitempty" mapstructure:"passthrough"`

	Options       []*Definition `yaml:"options,omitempty" json:"options,omitempty" mapstructure:"options"`
	Discriminator string        `yaml:"discriminator,omitempty" json:"discriminator,omitempty" mapstructure:"discriminator"`
}

// Clone returns a deep copy made through the JSON form.
func (d *Definition) Clone() (*Definition, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("clone definition: %w", err)
	}
	var out Definition
	if err := Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("clone definition: %w", err)
	}
	return &out, nil
}

// Unmarshal decodes JSON keeping numbers as json.Number, so literals and
// defaults keep their integer form.
func Unmarshal(data []byte, d *Definition) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(d)
}

// NamedDefinition is one entry of an object's fields.
type NamedDefinition struct {
	Name       string      `mapstructure:"name"`
	Definition *Definition `mapstructure:"definition"`
}

// Fields is an ordered mapping from field name to definition. YAML and
// JSON documents keep the order they were written in.
type Fields []NamedDefinition

// Get returns the definition of the named field.
func (f Fields) Get(name string) (*Definition, bool) {
	for _, nd := range f {
		if nd.Name == name {
			return nd.Definition, true
		}
	}
	return nil, false
}

// UnmarshalYAML reads a mapping node, preserving key order.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: fields must be a mapping", node.Line)
	}
	out := make(Fields, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return err
		}
		def := new(Definition)
		if err := node.Content[i+1].Decode(def); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		out = append(out, NamedDefinition{Name: name, Definition: def})
	}
	*f = out
	return nil
}

// MarshalYAML writes the fields as an ordered mapping.
func (f Fields) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, nd := range f {
		value := &yaml.Node{}
		if err := value.Encode(nd.Definition); err != nil {
			return nil, fmt.Errorf("field %q: %w", nd.Name, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: nd.Name}, value)
	}
	return node, nil
}

// UnmarshalJSON reads an object token by token, preserving key order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("fields must be a JSON object")
	}

	out := Fields{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		def := new(Definition)
		if err := dec.Decode(def); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		out = append(out, NamedDefinition{Name: name, Definition: def})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

// MarshalJSON writes the fields as an object in declaration order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, nd := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(nd.Name)
		if err != nil {
			return nil, err
		}
		def, err := json.Marshal(nd.Definition)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", nd.Name, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(def)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
