package schema

import (
	"fmt"
	"regexp"
)

// ConstraintKind names a check attached to a node.
type ConstraintKind string

const (
	ConstraintMin         ConstraintKind = "min"
	ConstraintMax         ConstraintKind = "max"
	ConstraintLength      ConstraintKind = "length"
	ConstraintSize        ConstraintKind = "size"
	ConstraintRegex       ConstraintKind = "regex"
	ConstraintEmail       ConstraintKind = "email"
	ConstraintURL         ConstraintKind = "url"
	ConstraintUUID        ConstraintKind = "uuid"
	ConstraintStartsWith  ConstraintKind = "starts_with"
	ConstraintEndsWith    ConstraintKind = "ends_with"
	ConstraintIncludes    ConstraintKind = "includes"
	ConstraintInt         ConstraintKind = "int"
	ConstraintPositive    ConstraintKind = "positive"
	ConstraintNonnegative ConstraintKind = "nonnegative"
	ConstraintNegative    ConstraintKind = "negative"
	ConstraintNonpositive ConstraintKind = "nonpositive"
	ConstraintGt          ConstraintKind = "gt"
	ConstraintGte         ConstraintKind = "gte"
	ConstraintLt          ConstraintKind = "lt"
	ConstraintLte         ConstraintKind = "lte"
	ConstraintMultipleOf  ConstraintKind = "multiple_of"
	ConstraintFinite      ConstraintKind = "finite"
)

// Constraint is one check on a primitive or container node. Bound holds the
// limit (an int for lengths and sizes, a float64 for numbers, a time.Time for
// dates, the pattern or affix for strings).
type Constraint struct {
	Kind    ConstraintKind `json:"kind"`
	Bound   any            `json:"bound,omitempty"`
	Message string         `json:"message,omitempty"`

	re *regexp.Regexp
}

// message returns the configured message or the formatted default.
func (c Constraint) message(format string, args ...any) string {
	if c.Message != "" {
		return c.Message
	}
	return fmt.Sprintf(format, args...)
}

func (c Constraint) issue(code Code, format string, args ...any) Issue {
	return Issue{Code: code, Message: c.message(format, args...), Bound: c.Bound}
}

func optMessage(message []string) string {
	if len(message) > 0 {
		return message[0]
	}
	return ""
}

// lengthBound returns the int bound of the first constraint of kind k.
func lengthBound(checks []Constraint, k ConstraintKind) (int, bool) {
	for _, c := range checks {
		if c.Kind == k {
			return c.Bound.(int), true
		}
	}
	return 0, false
}

// checkLength validates a length/size bound against the bounds already
// present, panicking with a *BuildError when the combination is impossible.
func checkLength(op string, checks []Constraint, k ConstraintKind, n int) {
	if n < 0 {
		buildPanic(op, "negative bound %d", n)
	}
	switch k {
	case ConstraintMin:
		if max, ok := lengthBound(checks, ConstraintMax); ok && n > max {
			buildPanic(op, "min %d exceeds max %d", n, max)
		}
	case ConstraintMax:
		if min, ok := lengthBound(checks, ConstraintMin); ok && n < min {
			buildPanic(op, "max %d is below min %d", n, min)
		}
	}
}

// checkLengths evaluates min/max/length/size constraints against n.
// noun is "character", "element" or "entry".
func checkLengths(c *Collector, checks []Constraint, subject, noun string, n int) {
	for _, k := range checks {
		switch k.Kind {
		case ConstraintMin:
			if bound := k.Bound.(int); n < bound {
				c.Add(k.issue(CodeTooSmall, "%s must contain at least %d %s(s)", subject, bound, noun))
			}
		case ConstraintMax:
			if bound := k.Bound.(int); n > bound {
				c.Add(k.issue(CodeTooBig, "%s must contain at most %d %s(s)", subject, bound, noun))
			}
		case ConstraintLength, ConstraintSize:
			bound := k.Bound.(int)
			if n < bound {
				c.Add(k.issue(CodeTooSmall, "%s must contain exactly %d %s(s)", subject, bound, noun))
			} else if n > bound {
				c.Add(k.issue(CodeTooBig, "%s must contain exactly %d %s(s)", subject, bound, noun))
			}
		}
	}
}
