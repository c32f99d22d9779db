package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Code identifies the kind of problem an Issue reports.
type Code string

const (
	CodeInvalidType          Code = "invalid_type"
	CodeInvalidLiteral       Code = "invalid_literal"
	CodeInvalidEnumValue     Code = "invalid_enum_value"
	CodeInvalidUnion         Code = "invalid_union"
	CodeInvalidDiscriminator Code = "invalid_union_discriminator"
	CodeInvalidDate          Code = "invalid_date"
	CodeTooSmall             Code = "too_small"
	CodeTooBig               Code = "too_big"
	CodeInvalidString        Code = "invalid_string"
	CodeNotInteger           Code = "not_integer"
	CodeNotMultipleOf        Code = "not_multiple_of"
	CodeNotFinite            Code = "not_finite"
	CodeNotUnique            Code = "not_unique"
	CodeUnrecognizedKeys     Code = "unrecognized_keys"
	CodeRequired             Code = "required"
	CodeCustom               Code = "custom"
	CodeTransformFailed      Code = "transform_failed"
	CodeMaxDepthExceeded     Code = "max_depth_exceeded"
)

// Category groups issue codes into the error taxonomy.
type Category string

const (
	StructuralMismatch   Category = "structural_mismatch"
	ConstraintViolation  Category = "constraint_violation"
	RequiredFieldMissing Category = "required_field_missing"
	RefinementFailed     Category = "refinement_failed"
	TransformFailed      Category = "transform_failed"
	MaxDepthExceeded     Category = "max_depth_exceeded"
)

// Category returns the taxonomy bucket of the code.
func (c Code) Category() Category {
	switch c {
	case CodeInvalidType, CodeInvalidLiteral, CodeInvalidEnumValue, CodeInvalidUnion,
		CodeInvalidDiscriminator, CodeInvalidDate:
		return StructuralMismatch
	case CodeRequired:
		return RequiredFieldMissing
	case CodeCustom:
		return RefinementFailed
	case CodeTransformFailed:
		return TransformFailed
	case CodeMaxDepthExceeded:
		return MaxDepthExceeded
	default:
		return ConstraintViolation
	}
}

// Path locates a value inside the root input. Segments are field names
// (string), element indexes (int) or map keys (MapKey).
type Path []any

// MapKey is the path segment of a map entry. It is rendered in brackets
// even when the key is a string.
type MapKey struct {
	Key any
}

func (k MapKey) String() string { return fmt.Sprint(k.Key) }

// MarshalJSON encodes the bare key.
func (k MapKey) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(k.Key)
	if err != nil {
		return json.Marshal(k.String())
	}
	return data, nil
}

// String renders the path as `address.zipcode`, `tags[2]` or `scores[alice]`.
func (p Path) String() string {
	var sb strings.Builder
	for i, seg := range p {
		switch s := seg.(type) {
		case string:
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(s)
		case int:
			sb.WriteString("[" + strconv.Itoa(s) + "]")
		case MapKey:
			sb.WriteString("[" + s.String() + "]")
		default:
			fmt.Fprintf(&sb, "[%v]", s)
		}
	}
	return sb.String()
}

func (p Path) prepend(seg any) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, seg)
	return append(out, p...)
}

// Issue is one recorded validation problem.
type Issue struct {
	Code     Code   `json:"code"`
	Path     Path   `json:"path"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Received string `json:"received,omitempty"`
	// Bound is the limit a too_small/too_big/not_multiple_of issue was checked against.
	Bound any `json:"bound,omitempty"`
	// Keys lists unrecognized object keys.
	Keys []string `json:"keys,omitempty"`
	// Options lists the accepted literal, enum or discriminator values.
	Options []any `json:"options,omitempty"`
	// UnionIssues holds the issues of every failed union alternative.
	UnionIssues [][]Issue `json:"unionIssues,omitempty"`
}

func (i Issue) String() string {
	if len(i.Path) == 0 {
		return fmt.Sprintf("%s (%s)", i.Message, i.Code)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Path, i.Message, i.Code)
}

// withPrefix returns a copy of the issue located one segment deeper.
func (i Issue) withPrefix(seg any) Issue {
	i.Path = i.Path.prepend(seg)
	if len(i.UnionIssues) > 0 {
		branches := make([][]Issue, len(i.UnionIssues))
		for b, issues := range i.UnionIssues {
			branches[b] = make([]Issue, len(issues))
			for j, sub := range issues {
				branches[b][j] = sub.withPrefix(seg)
			}
		}
		i.UnionIssues = branches
	}
	return i
}

// ValidationError is the single fault returned by Parse. It holds every
// issue found in the input.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "validation failed: " + e.Issues[0].String()
	}
	msg := fmt.Sprintf("%d validation issues:\n", len(e.Issues))
	for i, issue := range e.Issues {
		msg += fmt.Sprintf("  %d. %s\n", i+1, issue)
	}
	return msg
}

// Issues returns the issues carried by err if it is (or wraps) a
// *ValidationError. Otherwise returns nil.
func Issues(err error) []Issue {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Issues
	}
	return nil
}

// BuildError reports malformed builder arguments. Builders panic with it
// at construction time.
type BuildError struct {
	Op     string
	Reason string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.Op, e.Reason)
}

func buildPanic(op, format string, args ...any) {
	panic(&BuildError{Op: op, Reason: fmt.Sprintf(format, args...)})
}
