package schema

// BooleanSchema accepts Go bools.
type BooleanSchema struct {
	base
}

func Boolean() *BooleanSchema {
	s := &BooleanSchema{}
	s.self = s
	return s
}

func (s *BooleanSchema) Kind() Kind   { return KindBoolean }
func (s *BooleanSchema) Name() string { return "boolean" }

func (s *BooleanSchema) clone() Schema {
	c := *s
	c.self = &c
	return &c
}

func (s *BooleanSchema) check(v any, _ state) (any, []Issue) {
	b, ok := v.(bool)
	if !ok {
		return nil, typeIssue(s, v)
	}
	return b, nil
}

func (s *BooleanSchema) inspect() *Descriptor {
	return &Descriptor{Kind: KindBoolean, Name: s.Name(), Description: s.description}
}

// AnySchema accepts every value, including an absent one, unchanged.
type AnySchema struct {
	base
}

func Any() *AnySchema {
	s := &AnySchema{}
	s.self = s
	return s
}

func (s *AnySchema) Kind() Kind   { return KindAny }
func (s *AnySchema) Name() string { return "any" }

func (s *AnySchema) clone() Schema {
	c := *s
	c.self = &c
	return &c
}

func (s *AnySchema) check(v any, _ state) (any, []Issue) { return v, nil }

func (s *AnySchema) inspect() *Descriptor {
	return &Descriptor{Kind: KindAny, Name: s.Name(), Description: s.description}
}
