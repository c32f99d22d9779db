package schema

import (
	"math"
	"slices"
)

// NumberSchema accepts every Go numeric type and json.Number. NaN is
// rejected; the validated value is returned unchanged.
type NumberSchema struct {
	base
	checks []Constraint
}

// Number returns a schema accepting any number.
func Number() *NumberSchema {
	s := &NumberSchema{}
	s.self = s
	return s
}

func (s *NumberSchema) Kind() Kind   { return KindNumber }
func (s *NumberSchema) Name() string { return "number" }

// Constraints returns the checks attached to the node.
func (s *NumberSchema) Constraints() []Constraint { return slices.Clone(s.checks) }

func (s *NumberSchema) clone() Schema { return s.copy() }

func (s *NumberSchema) copy() *NumberSchema {
	c := *s
	c.checks = slices.Clone(s.checks)
	c.self = &c
	return &c
}

func (s *NumberSchema) with(k Constraint) *NumberSchema {
	c := s.copy()
	c.checks = append(c.checks, k)
	return c
}

func (s *NumberSchema) bound(op string, kind ConstraintKind, n float64, message []string) *NumberSchema {
	if math.IsNaN(n) {
		buildPanic(op, "bound is NaN")
	}
	lower := kind == ConstraintGt || kind == ConstraintGte
	for _, k := range s.checks {
		b, ok := k.Bound.(float64)
		if !ok {
			continue
		}
		switch {
		case lower && (k.Kind == ConstraintLt || k.Kind == ConstraintLte) && n > b:
			buildPanic(op, "lower bound %v exceeds upper bound %v", n, b)
		case !lower && (k.Kind == ConstraintGt || k.Kind == ConstraintGte) && n < b:
			buildPanic(op, "upper bound %v is below lower bound %v", n, b)
		}
	}
	return s.with(Constraint{Kind: kind, Bound: n, Message: optMessage(message)})
}

// Min is Gte.
func (s *NumberSchema) Min(n float64, message ...string) *NumberSchema {
	return s.bound("number.min", ConstraintGte, n, message)
}

// Max is Lte.
func (s *NumberSchema) Max(n float64, message ...string) *NumberSchema {
	return s.bound("number.max", ConstraintLte, n, message)
}

func (s *NumberSchema) Gt(n float64, message ...string) *NumberSchema {
	return s.bound("number.gt", ConstraintGt, n, message)
}

func (s *NumberSchema) Gte(n float64, message ...string) *NumberSchema {
	return s.bound("number.gte", ConstraintGte, n, message)
}

func (s *NumberSchema) Lt(n float64, message ...string) *NumberSchema {
	return s.bound("number.lt", ConstraintLt, n, message)
}

func (s *NumberSchema) Lte(n float64, message ...string) *NumberSchema {
	return s.bound("number.lte", ConstraintLte, n, message)
}

func (s *NumberSchema) Int(message ...string) *NumberSchema {
	return s.with(Constraint{Kind: ConstraintInt, Message: optMessage(message)})
}

func (s *NumberSchema) Positive(message ...string) *NumberSchema {
	return s.with(Constraint{Kind: ConstraintPositive, Bound: 0.0, Message: optMessage(message)})
}

func (s *NumberSchema) Nonnegative(message ...string) *NumberSchema {
	return s.with(Constraint{Kind: ConstraintNonnegative, Bound: 0.0, Message: optMessage(message)})
}

func (s *NumberSchema) Negative(message ...string) *NumberSchema {
	return s.with(Constraint{Kind: ConstraintNegative, Bound: 0.0, Message: optMessage(message)})
}

func (s *NumberSchema) Nonpositive(message ...string) *NumberSchema {
	return s.with(Constraint{Kind: ConstraintNonpositive, Bound: 0.0, Message: optMessage(message)})
}

// MultipleOf requires value/step to be an integer. step must be positive.
func (s *NumberSchema) MultipleOf(step float64, message ...string) *NumberSchema {
	if !(step > 0) || math.IsInf(step, 0) {
		buildPanic("number.multiple_of", "step must be a positive finite number, got %v", step)
	}
	return s.with(Constraint{Kind: ConstraintMultipleOf, Bound: step, Message: optMessage(message)})
}

// Finite rejects ±Inf.
func (s *NumberSchema) Finite(message ...string) *NumberSchema {
	return s.with(Constraint{Kind: ConstraintFinite, Message: optMessage(message)})
}

func (s *NumberSchema) check(v any, _ state) (any, []Issue) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return nil, typeIssue(s, v)
	}

	var c Collector
	for _, k := range s.checks {
		switch k.Kind {
		case ConstraintGte:
			if b := k.Bound.(float64); f < b {
				c.Add(k.issue(CodeTooSmall, "Number must be greater than or equal to %v", b))
			}
		case ConstraintGt:
			if b := k.Bound.(float64); f <= b {
				c.Add(k.issue(CodeTooSmall, "Number must be greater than %v", b))
			}
		case ConstraintLte:
			if b := k.Bound.(float64); f > b {
				c.Add(k.issue(CodeTooBig, "Number must be less than or equal to %v", b))
			}
		case ConstraintLt:
			if b := k.Bound.(float64); f >= b {
				c.Add(k.issue(CodeTooBig, "Number must be less than %v", b))
			}
		case ConstraintPositive:
			if f <= 0 {
				c.Add(k.issue(CodeTooSmall, "Number must be greater than 0"))
			}
		case ConstraintNonnegative:
			if f < 0 {
				c.Add(k.issue(CodeTooSmall, "Number must be greater than or equal to 0"))
			}
		case ConstraintNegative:
			if f >= 0 {
				c.Add(k.issue(CodeTooBig, "Number must be less than 0"))
			}
		case ConstraintNonpositive:
			if f > 0 {
				c.Add(k.issue(CodeTooBig, "Number must be less than or equal to 0"))
			}
		case ConstraintInt:
			if math.IsInf(f, 0) || math.Trunc(f) != f {
				c.Add(k.issue(CodeNotInteger, "Expected integer, received float"))
			}
		case ConstraintMultipleOf:
			step := k.Bound.(float64)
			q := f / step
			if math.IsInf(q, 0) || math.Abs(q-math.Round(q)) > 1e-9 {
				c.Add(k.issue(CodeNotMultipleOf, "Number must be a multiple of %v", step))
			}
		case ConstraintFinite:
			if math.IsInf(f, 0) {
				c.Add(k.issue(CodeNotFinite, "Number must be finite"))
			}
		}
	}
	if c.Len() > 0 {
		return nil, c.Issues()
	}
	return v, nil
}

func (s *NumberSchema) inspect() *Descriptor {
	return &Descriptor{Kind: KindNumber, Name: s.Name(), Description: s.description, Constraints: s.Constraints()}
}
