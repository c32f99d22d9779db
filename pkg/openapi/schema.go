package openapi

import (
	"regexp"

	"github.com/aretw0/sift/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

// ComponentPrefix is where catalog schemas live in a generated document.
const ComponentPrefix = "#/components/schemas/"

// Schema converts a descriptor into an OpenAPI 3.0 schema. Refs become
// $ref pointers into ComponentPrefix; refinements and transforms are
// opaque and contribute nothing beyond their inner schema.
func Schema(d *schema.Descriptor) *openapi3.SchemaRef {
	if d == nil {
		return openapi3.NewSchemaRef("", &openapi3.Schema{})
	}

	switch d.Kind {
	case schema.KindLazy:
		if d.Ref != "" {
			return openapi3.NewSchemaRef(ComponentPrefix+d.Ref, nil)
		}
		return value(&openapi3.Schema{Description: d.Description})
	case schema.KindOptional, schema.KindRefined, schema.KindTransformed:
		return describe(Schema(d.Inner), d.Description)
	case schema.KindNullable:
		inner := Schema(d.Inner)
		if inner.Ref != "" {
			return value(&openapi3.Schema{Nullable: true, AllOf: openapi3.SchemaRefs{inner}, Description: d.Description})
		}
		inner.Value.Nullable = true
		return describe(inner, d.Description)
	case schema.KindDefault:
		inner := Schema(d.Inner)
		if inner.Ref != "" {
			return value(&openapi3.Schema{Default: d.Default, AllOf: openapi3.SchemaRefs{inner}, Description: d.Description})
		}
		inner.Value.Default = d.Default
		return describe(inner, d.Description)
	}

	var s *openapi3.Schema
	switch d.Kind {
	case schema.KindString:
		s = stringSchema(d.Constraints)
	case schema.KindNumber:
		s = numberSchema(d.Constraints)
	case schema.KindBoolean:
		s = openapi3.NewBoolSchema()
	case schema.KindDate:
		s = openapi3.NewDateTimeSchema()
	case schema.KindAny:
		s = &openapi3.Schema{}
	case schema.KindLiteral:
		s = literalSchema(d.Values[0])
	case schema.KindEnum:
		s = openapi3.NewStringSchema().WithEnum(d.Values...)
	case schema.KindArray:
		s = openapi3.NewArraySchema()
		s.Items = Schema(d.Element)
		applyCounts(d.Constraints, s.WithMinItems, s.WithMaxItems)
	case schema.KindSet:
		s = openapi3.NewArraySchema().WithUniqueItems(true)
		s.Items = Schema(d.Element)
		applyCounts(d.Constraints, s.WithMinItems, s.WithMaxItems)
	case schema.KindMap:
		s = openapi3.NewObjectSchema()
		s.AdditionalProperties = openapi3.AdditionalProperties{Schema: Schema(d.Value)}
		applyCounts(d.Constraints, s.WithMinProperties, s.WithMaxProperties)
	case schema.KindObject:
		s = objectSchema(d)
	case schema.KindUnion:
		s = &openapi3.Schema{OneOf: refs(d.Options)}
	case schema.KindDiscriminatedUnion:
		s = &openapi3.Schema{
			OneOf:         refs(d.Options),
			Discriminator: &openapi3.Discriminator{PropertyName: d.Discriminator},
		}
	default:
		s = &openapi3.Schema{}
	}
	s.Description = d.Description
	return value(s)
}

func value(s *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("", s)
}

func describe(ref *openapi3.SchemaRef, description string) *openapi3.SchemaRef {
	if description == "" {
		return ref
	}
	if ref.Ref != "" {
		return value(&openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}, Description: description})
	}
	ref.Value.Description = description
	return ref
}

func refs(options []*schema.Descriptor) openapi3.SchemaRefs {
	out := make(openapi3.SchemaRefs, len(options))
	for i, o := range options {
		out[i] = Schema(o)
	}
	return out
}

func stringSchema(checks []schema.Constraint) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	var patterns []string
	for _, c := range checks {
		switch c.Kind {
		case schema.ConstraintMin:
			s.WithMinLength(int64(count(c.Bound)))
		case schema.ConstraintMax:
			s.WithMaxLength(int64(count(c.Bound)))
		case schema.ConstraintLength:
			s.WithMinLength(int64(count(c.Bound))).WithMaxLength(int64(count(c.Bound)))
		case schema.ConstraintEmail:
			s.WithFormat("email")
		case schema.ConstraintURL:
			s.WithFormat("uri")
		case schema.ConstraintUUID:
			s.WithFormat("uuid")
		case schema.ConstraintRegex:
			patterns = append(patterns, "^(?:"+bound(c)+")$")
		case schema.ConstraintStartsWith:
			patterns = append(patterns, "^"+regexp.QuoteMeta(bound(c)))
		case schema.ConstraintEndsWith:
			patterns = append(patterns, regexp.QuoteMeta(bound(c))+"$")
		case schema.ConstraintIncludes:
			patterns = append(patterns, regexp.QuoteMeta(bound(c)))
		}
	}
	// A schema holds a single pattern; further ones are combined with allOf.
	for i, p := range patterns {
		if i == 0 {
			s.WithPattern(p)
			continue
		}
		s.AllOf = append(s.AllOf, value(&openapi3.Schema{Pattern: p}))
	}
	return s
}

func numberSchema(checks []schema.Constraint) *openapi3.Schema {
	s := openapi3.NewFloat64Schema()
	for _, c := range checks {
		switch c.Kind {
		case schema.ConstraintInt:
			s = replaceType(s, openapi3.NewIntegerSchema())
		case schema.ConstraintGte, schema.ConstraintNonnegative:
			s.WithMin(number(c.Bound))
		case schema.ConstraintGt, schema.ConstraintPositive:
			s.WithMin(number(c.Bound)).WithExclusiveMin(true)
		case schema.ConstraintLte, schema.ConstraintNonpositive:
			s.WithMax(number(c.Bound))
		case schema.ConstraintLt, schema.ConstraintNegative:
			s.WithMax(number(c.Bound)).WithExclusiveMax(true)
		case schema.ConstraintMultipleOf:
			step := number(c.Bound)
			s.MultipleOf = &step
		}
	}
	return s
}

// replaceType moves the bounds already collected onto a schema of another type.
func replaceType(from, to *openapi3.Schema) *openapi3.Schema {
	to.Min, to.Max = from.Min, from.Max
	to.ExclusiveMin, to.ExclusiveMax = from.ExclusiveMin, from.ExclusiveMax
	to.MultipleOf = from.MultipleOf
	return to
}

func literalSchema(v any) *openapi3.Schema {
	var s *openapi3.Schema
	switch v.(type) {
	case nil:
		s = &openapi3.Schema{Nullable: true}
	case string:
		s = openapi3.NewStringSchema()
	case bool:
		s = openapi3.NewBoolSchema()
	default:
		s = openapi3.NewFloat64Schema()
	}
	return s.WithEnum(v)
}

func objectSchema(d *schema.Descriptor) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	for _, f := range d.Fields {
		s.WithPropertyRef(f.Name, Schema(f.Schema))
		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}
	switch d.UnknownKeys {
	case schema.UnknownStrict:
		s.WithoutAdditionalProperties()
	case schema.UnknownPassthrough:
		s.WithAnyAdditionalProperties()
	}
	return s
}

func applyCounts(checks []schema.Constraint, min, max func(int64) *openapi3.Schema) {
	for _, c := range checks {
		n := int64(count(c.Bound))
		switch c.Kind {
		case schema.ConstraintMin:
			min(n)
		case schema.ConstraintMax:
			max(n)
		case schema.ConstraintLength, schema.ConstraintSize:
			min(n)
			max(n)
		}
	}
}

func bound(c schema.Constraint) string {
	s, _ := c.Bound.(string)
	return s
}

func count(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}
