package definition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDefinition is wrapped by every parse and compile failure.
var ErrInvalidDefinition = errors.New("invalid definition")

// Format selects the document syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension; YAML is the default.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a single definition document.
func Parse(data []byte, format Format) (*Definition, error) {
	var def Definition
	switch format {
	case FormatJSON:
		if err := Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
	case FormatYAML, "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidDefinition, format)
	}
	return &def, nil
}

// LoadFile reads and parses a definition file, choosing the format by extension.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}
	def, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// FromMap decodes a generic map (e.g. document front matter) into a
// Definition. Maps carry no key order, so object fields are sorted by name.
func FromMap(raw map[string]any) (*Definition, error) {
	var def Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &def,
		ErrorUnused: true,
		DecodeHook:  fieldsHook,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return &def, nil
}

var fieldsType = reflect.TypeOf(Fields{})

// fieldsHook turns a field mapping into the name/definition pairs Fields
// decodes from.
func fieldsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != fieldsType || from.Kind() != reflect.Map {
		return data, nil
	}
	rv := reflect.ValueOf(data)
	names := make([]string, 0, rv.Len())
	values := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		name := fmt.Sprint(iter.Key().Interface())
		names = append(names, name)
		values[name] = iter.Value().Interface()
	}
	sort.Strings(names)

	out := make([]map[string]any, len(names))
	for i, name := range names {
		out[i] = map[string]any{"name": name, "definition": values[name]}
	}
	return out, nil
}

// DecodeInput decodes a single document to validate. JSON numbers stay
// json.Number so integers keep their exact value.
func DecodeInput(data []byte, format Format) (any, error) {
	var input any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&input); err != nil {
			return nil, err
		}
		if dec.More() {
			return nil, errors.New("trailing data after JSON value")
		}
	case FormatYAML, "":
		if err := yaml.Unmarshal(data, &input); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return input, nil
}
