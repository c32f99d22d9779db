package schema

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DefaultMaxDepth bounds how many containers a single walk may descend into.
const DefaultMaxDepth = 128

// Option configures a single validation call.
type Option func(*config)

type config struct {
	maxDepth int
}

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// state is passed by value down the walk; siblings never observe each
// other's changes.
type state struct {
	depth    int
	maxDepth int
}

// enter accounts for one more container level.
func (st state) enter() (state, []Issue) {
	if st.depth >= st.maxDepth {
		return st, []Issue{{
			Code:    CodeMaxDepthExceeded,
			Message: fmt.Sprintf("Maximum depth of %d exceeded", st.maxDepth),
		}}
	}
	st.depth++
	return st, nil
}

// Result is the outcome of SafeParse. Success discriminates: when true Data
// holds the validated value, otherwise Error holds every issue.
type Result struct {
	Success bool
	Data    any
	Error   *ValidationError
}

// SafeParse walks s against input. It never panics because of the input;
// all problems are reported in the returned Result.
func SafeParse(s Schema, input any, opts ...Option) Result {
	cfg := config{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}

	out, issues := run(s, input, state{maxDepth: cfg.maxDepth})
	if len(issues) > 0 {
		return Result{Error: &ValidationError{Issues: issues}}
	}
	if IsUndefined(out) {
		out = nil
	}
	return Result{Success: true, Data: out}
}

// Parse is SafeParse for callers preferring error returns. On failure the
// error is a *ValidationError holding every issue.
func Parse(s Schema, input any, opts ...Option) (any, error) {
	res := SafeParse(s, input, opts...)
	if !res.Success {
		return nil, res.Error
	}
	return res.Data, nil
}

// Decode parses input and decodes the validated value into T, matching
// object keys against `json` struct tags.
func Decode[T any](s Schema, input any, opts ...Option) (T, error) {
	var out T
	data, err := Parse(s, input, opts...)
	if err != nil {
		return out, err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &out,
		TagName:    "json",
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return out, fmt.Errorf("schema: create decoder: %w", err)
	}
	if err := dec.Decode(data); err != nil {
		return out, fmt.Errorf("schema: decode into %T: %w", out, err)
	}
	return out, nil
}

// run is the single dispatch point of the walk.
func run(s Schema, v any, st state) (any, []Issue) {
	if !IsUndefined(v) {
		v = indirect(v)
	} else if !acceptsAbsent(s, 0) {
		return nil, []Issue{{
			Code:     CodeRequired,
			Message:  "Required",
			Expected: s.Name(),
			Received: "undefined",
		}}
	}
	return s.check(v, st)
}

// acceptsAbsent reports whether s (or the schema it wraps) handles an
// absent value itself.
func acceptsAbsent(s Schema, hops int) bool {
	if hops > 32 {
		return false
	}
	switch n := s.(type) {
	case *OptionalSchema, *DefaultSchema, *AnySchema:
		return true
	case *NullableSchema:
		return acceptsAbsent(n.inner, hops+1)
	case *RefinedSchema:
		return acceptsAbsent(n.inner, hops+1)
	case *TransformedSchema:
		return acceptsAbsent(n.inner, hops+1)
	case *LazySchema:
		return acceptsAbsent(n.Resolve(), hops+1)
	case *UnionSchema:
		for _, opt := range n.options {
			if acceptsAbsent(opt, hops+1) {
				return true
			}
		}
	}
	return false
}

func typeIssue(s Schema, v any) []Issue {
	received := typeOf(v)
	return []Issue{{
		Code:     CodeInvalidType,
		Message:  fmt.Sprintf("Expected %s, received %s", s.Name(), received),
		Expected: s.Name(),
		Received: received,
	}}
}
