package definition

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aretw0/sift/pkg/schema"
)

// Resolver returns the schema registered under a name, for `ref` entries.
type Resolver func(name string) (schema.Schema, bool)

// Compile builds the schema tree described by def. Builder failures are
// returned as errors wrapping ErrInvalidDefinition and the *schema.BuildError.
func Compile(def *Definition, resolve Resolver) (s schema.Schema, err error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}
	defer func() {
		if r := recover(); r != nil {
			berr, ok := r.(*schema.BuildError)
			if !ok {
				panic(r)
			}
			s, err = nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, berr)
		}
	}()
	c := &compiler{resolve: resolve}
	return c.compile(def, "$")
}

type compiler struct {
	resolve Resolver
}

func (c *compiler) fail(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidDefinition, path, fmt.Sprintf(format, args...))
}

func (c *compiler) compile(def *Definition, path string) (schema.Schema, error) {
	if def == nil {
		return nil, c.fail(path, "missing definition")
	}
	s, err := c.base(def, path)
	if err != nil {
		return nil, err
	}
	if def.Description != "" {
		s = s.Describe(def.Description)
	}
	if def.Nullable {
		s = s.Nullable()
	}
	switch {
	case def.Default != nil:
		s = s.Default(def.Default)
	case def.Optional:
		s = s.Optional()
	}
	return s, nil
}

func (c *compiler) base(def *Definition, path string) (schema.Schema, error) {
	if def.Ref != "" {
		if c.resolve == nil {
			return nil, c.fail(path, "ref %q without a resolver", def.Ref)
		}
		s, ok := c.resolve(def.Ref)
		if !ok {
			return nil, c.fail(path, "unresolved ref %q", def.Ref)
		}
		return s, nil
	}

	switch def.Type {
	case "string":
		return c.str(def, path)
	case "number", "integer":
		return c.number(def), nil
	case "boolean":
		return schema.Boolean(), nil
	case "any":
		return schema.Any(), nil
	case "date":
		return c.date(def, path)
	case "literal":
		lit := schema.Literal(def.Value)
		if def.Message != "" {
			lit = lit.WithMessage(def.Message)
		}
		return lit, nil
	case "enum":
		e := schema.Enum(def.Values...)
		if def.Message != "" {
			e = e.WithMessage(def.Message)
		}
		return e, nil
	case "array":
		return c.array(def, path)
	case "set":
		return c.set(def, path)
	case "map":
		return c.mapping(def, path)
	case "object":
		return c.object(def, path)
	case "union":
		return c.union(def, path)
	case "":
		return nil, c.fail(path, "missing type")
	}
	return nil, c.fail(path, "unknown type %q", def.Type)
}

func (d *Definition) message(key string) []string {
	if m, ok := d.Messages[key]; ok {
		return []string{m}
	}
	return nil
}

// count converts a length-like bound to an int.
func (c *compiler) count(path, key string, v *float64) (int, error) {
	if *v != math.Trunc(*v) || *v < 0 {
		return 0, c.fail(path, "%s must be a non-negative integer, got %v", key, *v)
	}
	return int(*v), nil
}

type lengthBuilder[T any] struct {
	min, max, exact func(T, int, ...string) T
}

func applyLengths[T any](c *compiler, def *Definition, path string, s T, b lengthBuilder[T], exactKey string, exact *float64) (T, error) {
	if def.Min != nil {
		n, err := c.count(path, "min", def.Min)
		if err != nil {
			return s, err
		}
		s = b.min(s, n, def.message("min")...)
	}
	if def.Max != nil {
		n, err := c.count(path, "max", def.Max)
		if err != nil {
			return s, err
		}
		s = b.max(s, n, def.message("max")...)
	}
	if exact != nil {
		n, err := c.count(path, exactKey, exact)
		if err != nil {
			return s, err
		}
		s = b.exact(s, n, def.message(exactKey)...)
	}
	return s, nil
}

func (c *compiler) str(def *Definition, path string) (schema.Schema, error) {
	s, err := applyLengths(c, def, path, schema.String(), lengthBuilder[*schema.StringSchema]{
		min:   (*schema.StringSchema).Min,
		max:   (*schema.StringSchema).Max,
		exact: (*schema.StringSchema).Length,
	}, "length", def.Length)
	if err != nil {
		return nil, err
	}
	if def.Regex != "" {
		s = s.Regex(def.Regex, def.message("regex")...)
	}
	switch def.Format {
	case "":
	case "email":
		s = s.Email(def.message("format")...)
	case "url":
		s = s.URL(def.message("format")...)
	case "uuid":
		s = s.UUID(def.message("format")...)
	default:
		return nil, c.fail(path, "unknown string format %q", def.Format)
	}
	if def.StartsWith != "" {
		s = s.StartsWith(def.StartsWith, def.message("starts_with")...)
	}
	if def.EndsWith != "" {
		s = s.EndsWith(def.EndsWith, def.message("ends_with")...)
	}
	if def.Includes != "" {
		s = s.Includes(def.Includes, def.message("includes")...)
	}
	return s, nil
}

func (c *compiler) number(def *Definition) schema.Schema {
	s := schema.Number()
	if def.Type == "integer" || def.Int {
		s = s.Int(def.message("int")...)
	}
	bounds := []struct {
		key   string
		v     *float64
		apply func(*schema.NumberSchema, float64, ...string) *schema.NumberSchema
	}{
		{"min", def.Min, (*schema.NumberSchema).Min},
		{"gte", def.Gte, (*schema.NumberSchema).Gte},
		{"gt", def.Gt, (*schema.NumberSchema).Gt},
		{"max", def.Max, (*schema.NumberSchema).Max},
		{"lte", def.Lte, (*schema.NumberSchema).Lte},
		{"lt", def.Lt, (*schema.NumberSchema).Lt},
	}
	for _, b := range bounds {
		if b.v != nil {
			s = b.apply(s, *b.v, def.message(b.key)...)
		}
	}
	if def.Positive {
		s = s.Positive(def.message("positive")...)
	}
	if def.Nonnegative {
		s = s.Nonnegative(def.message("nonnegative")...)
	}
	if def.Negative {
		s = s.Negative(def.message("negative")...)
	}
	if def.Nonpositive {
		s = s.Nonpositive(def.message("nonpositive")...)
	}
	if def.MultipleOf != nil {
		s = s.MultipleOf(*def.MultipleOf, def.message("multiple_of")...)
	}
	if def.Finite {
		s = s.Finite(def.message("finite")...)
	}
	return s
}

func parseTime(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("expected an RFC 3339 timestamp or YYYY-MM-DD")
}

func (c *compiler) date(def *Definition, path string) (schema.Schema, error) {
	s := schema.Date()
	if def.Coerce {
		s = s.Coerce()
	}
	if def.MinDate != "" {
		t, err := parseTime(def.MinDate)
		if err != nil {
			return nil, c.fail(path, "min_date: %v", err)
		}
		s = s.Min(t, def.message("min_date")...)
	}
	if def.MaxDate != "" {
		t, err := parseTime(def.MaxDate)
		if err != nil {
			return nil, c.fail(path, "max_date: %v", err)
		}
		s = s.Max(t, def.message("max_date")...)
	}
	return s, nil
}

func (c *compiler) array(def *Definition, path string) (schema.Schema, error) {
	el, err := c.compile(def.Element, path+".element")
	if err != nil {
		return nil, err
	}
	return applyLengths(c, def, path, schema.Array(el), lengthBuilder[*schema.ArraySchema]{
		min:   (*schema.ArraySchema).Min,
		max:   (*schema.ArraySchema).Max,
		exact: (*schema.ArraySchema).Length,
	}, "length", def.Length)
}

func (c *compiler) set(def *Definition, path string) (schema.Schema, error) {
	el, err := c.compile(def.Element, path+".element")
	if err != nil {
		return nil, err
	}
	return applyLengths(c, def, path, schema.Set(el), lengthBuilder[*schema.SetSchema]{
		min:   (*schema.SetSchema).Min,
		max:   (*schema.SetSchema).Max,
		exact: (*schema.SetSchema).Size,
	}, "size", def.Size)
}

func (c *compiler) mapping(def *Definition, path string) (schema.Schema, error) {
	var key schema.Schema = schema.String()
	if def.Key != nil {
		k, err := c.compile(def.Key, path+".key")
		if err != nil {
			return nil, err
		}
		key = k
	}
	value, err := c.compile(def.ValueSchema, path+".value_schema")
	if err != nil {
		return nil, err
	}
	return applyLengths(c, def, path, schema.Map(key, value), lengthBuilder[*schema.MapSchema]{
		min:   (*schema.MapSchema).Min,
		max:   (*schema.MapSchema).Max,
		exact: (*schema.MapSchema).Size,
	}, "size", def.Size)
}

func (c *compiler) object(def *Definition, path string) (schema.Schema, error) {
	if def.Strict && def.Passthrough {
		return nil, c.fail(path, "strict and passthrough are exclusive")
	}
	fields := make([]schema.ObjectField, 0, len(def.Fields))
	for _, nd := range def.Fields {
		fs, err := c.compile(nd.Definition, path+"."+nd.Name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, schema.Field(nd.Name, fs))
	}
	obj := schema.Object(fields...)
	switch {
	case def.Strict:
		if def.Message != "" {
			obj = obj.Strict(def.Message)
		} else {
			obj = obj.Strict()
		}
	case def.Passthrough:
		obj = obj.Passthrough()
	}
	return obj, nil
}

func (c *compiler) union(def *Definition, path string) (schema.Schema, error) {
	options := make([]schema.Schema, len(def.Options))
	for i, od := range def.Options {
		o, err := c.compile(od, fmt.Sprintf("%s.options[%d]", path, i))
		if err != nil {
			return nil, err
		}
		options[i] = o
	}
	if def.Discriminator == "" {
		return schema.Union(options...), nil
	}

	objects := make([]*schema.ObjectSchema, len(options))
	for i, o := range options {
		obj, ok := o.(*schema.ObjectSchema)
		if !ok {
			return nil, c.fail(path, "options[%d]: discriminated unions need object options, got %s", i, o.Kind())
		}
		objects[i] = obj
	}
	return schema.DiscriminatedUnion(def.Discriminator, objects...), nil
}
