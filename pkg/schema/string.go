package schema

import (
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-']+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)

// StringSchema accepts Go strings. Lengths count runes.
type StringSchema struct {
	base
	checks []Constraint
}

// String returns a schema accepting any string.
func String() *StringSchema {
	s := &StringSchema{}
	s.self = s
	return s
}

func (s *StringSchema) Kind() Kind   { return KindString }
func (s *StringSchema) Name() string { return "string" }

// Constraints returns the checks attached to the node.
func (s *StringSchema) Constraints() []Constraint { return slices.Clone(s.checks) }

func (s *StringSchema) clone() Schema { return s.copy() }

func (s *StringSchema) copy() *StringSchema {
	c := *s
	c.checks = slices.Clone(s.checks)
	c.self = &c
	return &c
}

func (s *StringSchema) with(k Constraint) *StringSchema {
	c := s.copy()
	c.checks = append(c.checks, k)
	return c
}

func (s *StringSchema) Min(n int, message ...string) *StringSchema {
	checkLength("string.min", s.checks, ConstraintMin, n)
	return s.with(Constraint{Kind: ConstraintMin, Bound: n, Message: optMessage(message)})
}

func (s *StringSchema) Max(n int, message ...string) *StringSchema {
	checkLength("string.max", s.checks, ConstraintMax, n)
	return s.with(Constraint{Kind: ConstraintMax, Bound: n, Message: optMessage(message)})
}

func (s *StringSchema) Length(n int, message ...string) *StringSchema {
	checkLength("string.length", s.checks, ConstraintLength, n)
	return s.with(Constraint{Kind: ConstraintLength, Bound: n, Message: optMessage(message)})
}

// Nonempty is Min(1).
func (s *StringSchema) Nonempty(message ...string) *StringSchema {
	return s.Min(1, message...)
}

// Regex requires the whole string to match pattern. The pattern is compiled
// anchored; an invalid pattern panics with a *BuildError.
func (s *StringSchema) Regex(pattern string, message ...string) *StringSchema {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		buildPanic("string.regex", "invalid pattern %q: %v", pattern, err)
	}
	return s.with(Constraint{Kind: ConstraintRegex, Bound: pattern, Message: optMessage(message), re: re})
}

func (s *StringSchema) Email(message ...string) *StringSchema {
	return s.with(Constraint{Kind: ConstraintEmail, Message: optMessage(message)})
}

// URL requires an absolute URL with a scheme and a host.
func (s *StringSchema) URL(message ...string) *StringSchema {
	return s.with(Constraint{Kind: ConstraintURL, Message: optMessage(message)})
}

// UUID requires the canonical 8-4-4-4-12 hex form.
func (s *StringSchema) UUID(message ...string) *StringSchema {
	return s.with(Constraint{Kind: ConstraintUUID, Message: optMessage(message)})
}

func (s *StringSchema) StartsWith(prefix string, message ...string) *StringSchema {
	return s.with(Constraint{Kind: ConstraintStartsWith, Bound: prefix, Message: optMessage(message)})
}

func (s *StringSchema) EndsWith(suffix string, message ...string) *StringSchema {
	return s.with(Constraint{Kind: ConstraintEndsWith, Bound: suffix, Message: optMessage(message)})
}

func (s *StringSchema) Includes(sub string, message ...string) *StringSchema {
	return s.with(Constraint{Kind: ConstraintIncludes, Bound: sub, Message: optMessage(message)})
}

func (s *StringSchema) check(v any, _ state) (any, []Issue) {
	str, ok := v.(string)
	if !ok {
		return nil, typeIssue(s, v)
	}

	var c Collector
	checkLengths(&c, s.checks, "String", "character", utf8.RuneCountInString(str))
	for _, k := range s.checks {
		switch k.Kind {
		case ConstraintRegex:
			if !k.re.MatchString(str) {
				c.Add(k.issue(CodeInvalidString, "Invalid"))
			}
		case ConstraintEmail:
			if !emailPattern.MatchString(str) {
				c.Add(k.issue(CodeInvalidString, "Invalid email"))
			}
		case ConstraintURL:
			if !isURL(str) {
				c.Add(k.issue(CodeInvalidString, "Invalid url"))
			}
		case ConstraintUUID:
			if _, err := uuid.Parse(str); err != nil || len(str) != 36 {
				c.Add(k.issue(CodeInvalidString, "Invalid uuid"))
			}
		case ConstraintStartsWith:
			if !strings.HasPrefix(str, k.Bound.(string)) {
				c.Add(k.issue(CodeInvalidString, "Invalid input: must start with \"%s\"", k.Bound))
			}
		case ConstraintEndsWith:
			if !strings.HasSuffix(str, k.Bound.(string)) {
				c.Add(k.issue(CodeInvalidString, "Invalid input: must end with \"%s\"", k.Bound))
			}
		case ConstraintIncludes:
			if !strings.Contains(str, k.Bound.(string)) {
				c.Add(k.issue(CodeInvalidString, "Invalid input: must include \"%s\"", k.Bound))
			}
		}
	}
	if c.Len() > 0 {
		return nil, c.Issues()
	}
	return str, nil
}

func isURL(str string) bool {
	u, err := url.Parse(str)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func (s *StringSchema) inspect() *Descriptor {
	return &Descriptor{Kind: KindString, Name: s.Name(), Description: s.description, Constraints: s.Constraints()}
}
