package schema

import (
	"slices"
	"time"
)

// dateLayouts are tried in order when coercion is enabled.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// DateSchema accepts time.Time values. With Coerce it also accepts
// RFC 3339 and YYYY-MM-DD strings.
type DateSchema struct {
	base
	checks []Constraint
	coerce bool
}

func Date() *DateSchema {
	s := &DateSchema{}
	s.self = s
	return s
}

func (s *DateSchema) Kind() Kind   { return KindDate }
func (s *DateSchema) Name() string { return "date" }

// Constraints returns the checks attached to the node.
func (s *DateSchema) Constraints() []Constraint { return slices.Clone(s.checks) }

// Coerces reports whether string inputs are parsed.
func (s *DateSchema) Coerces() bool { return s.coerce }

func (s *DateSchema) clone() Schema { return s.copy() }

func (s *DateSchema) copy() *DateSchema {
	c := *s
	c.checks = slices.Clone(s.checks)
	c.self = &c
	return &c
}

func (s *DateSchema) Min(t time.Time, message ...string) *DateSchema {
	if max, ok := s.dateBound(ConstraintMax); ok && t.After(max) {
		buildPanic("date.min", "min %s is after max %s", t.Format(time.RFC3339), max.Format(time.RFC3339))
	}
	c := s.copy()
	c.checks = append(c.checks, Constraint{Kind: ConstraintMin, Bound: t, Message: optMessage(message)})
	return c
}

func (s *DateSchema) Max(t time.Time, message ...string) *DateSchema {
	if min, ok := s.dateBound(ConstraintMin); ok && t.Before(min) {
		buildPanic("date.max", "max %s is before min %s", t.Format(time.RFC3339), min.Format(time.RFC3339))
	}
	c := s.copy()
	c.checks = append(c.checks, Constraint{Kind: ConstraintMax, Bound: t, Message: optMessage(message)})
	return c
}

// Coerce enables parsing of string inputs.
func (s *DateSchema) Coerce() *DateSchema {
	c := s.copy()
	c.coerce = true
	return c
}

func (s *DateSchema) dateBound(k ConstraintKind) (time.Time, bool) {
	for _, c := range s.checks {
		if c.Kind == k {
			return c.Bound.(time.Time), true
		}
	}
	return time.Time{}, false
}

func (s *DateSchema) check(v any, _ state) (any, []Issue) {
	var t time.Time
	switch in := v.(type) {
	case time.Time:
		t = in
	case string:
		if !s.coerce {
			return nil, typeIssue(s, v)
		}
		parsed, ok := parseDate(in)
		if !ok {
			return nil, []Issue{{Code: CodeInvalidDate, Message: "Invalid date", Received: "string"}}
		}
		t = parsed
	default:
		return nil, typeIssue(s, v)
	}
	if t.IsZero() {
		return nil, []Issue{{Code: CodeInvalidDate, Message: "Invalid date"}}
	}

	var c Collector
	for _, k := range s.checks {
		bound := k.Bound.(time.Time)
		switch k.Kind {
		case ConstraintMin:
			if t.Before(bound) {
				c.Add(k.issue(CodeTooSmall, "Date must be greater than or equal to %s", bound.Format(time.RFC3339)))
			}
		case ConstraintMax:
			if t.After(bound) {
				c.Add(k.issue(CodeTooBig, "Date must be smaller than or equal to %s", bound.Format(time.RFC3339)))
			}
		}
	}
	if c.Len() > 0 {
		return nil, c.Issues()
	}
	return t, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *DateSchema) inspect() *Descriptor {
	return &Descriptor{
		Kind:        KindDate,
		Name:        s.Name(),
		Description: s.description,
		Constraints: s.Constraints(),
		Coerce:      s.coerce,
	}
}
