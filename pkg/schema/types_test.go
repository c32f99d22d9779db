package schema

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func firstCode(res Result) Code {
	if res.Success || len(res.Error.Issues) == 0 {
		return ""
	}
	return res.Error.Issues[0].Code
}

func TestStringSchema(t *testing.T) {
	typ := String()

	if typ.Name() != "string" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "string")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"hello", false},
		{"", false},
		{42, true},
		{3.14, true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		res := typ.SafeParse(tt.value)
		if res.Success == tt.wantErr {
			t.Errorf("SafeParse(%v) success = %v, wantErr %v", tt.value, res.Success, tt.wantErr)
		}
	}
}

func TestStringConstraints(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		value  any
		want   Code
	}{
		{"min ok", String().Min(3), "abc", ""},
		{"min counts runes", String().Min(3), "héé", ""},
		{"min", String().Min(3), "ab", CodeTooSmall},
		{"max", String().Max(2), "abc", CodeTooBig},
		{"length short", String().Length(2), "a", CodeTooSmall},
		{"length long", String().Length(2), "abc", CodeTooBig},
		{"nonempty", String().Nonempty(), "", CodeTooSmall},
		{"email ok", String().Email(), "ada@example.com", ""},
		{"email", String().Email(), "nope", CodeInvalidString},
		{"url ok", String().URL(), "https://example.com/x", ""},
		{"url", String().URL(), "example", CodeInvalidString},
		{"uuid ok", String().UUID(), "123e4567-e89b-12d3-a456-426614174000", ""},
		{"uuid", String().UUID(), "123", CodeInvalidString},
		{"regex ok", String().Regex(`[a-z]+`), "abc", ""},
		{"regex anchored", String().Regex(`[a-z]+`), "abc1", CodeInvalidString},
		{"starts with", String().StartsWith("ab"), "abc", ""},
		{"ends with", String().EndsWith("z"), "abc", CodeInvalidString},
		{"includes", String().Includes("b"), "abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstCode(tt.schema.SafeParse(tt.value)); got != tt.want {
				t.Errorf("code = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringCustomMessage(t *testing.T) {
	res := String().Min(5, "too short").SafeParse("abc")
	if res.Success {
		t.Fatal("expected failure")
	}
	if got := res.Error.Issues[0].Message; got != "too short" {
		t.Errorf("Message = %q, want %q", got, "too short")
	}
}

func TestNumberSchema(t *testing.T) {
	typ := Number()

	tests := []struct {
		value   any
		wantErr bool
	}{
		{42, false},
		{int8(42), false},
		{uint64(42), false},
		{float32(1.5), false},
		{3.5, false},
		{json.Number("12"), false},
		{"42", true},
		{true, true},
		{math.NaN(), true},
		{nil, true},
	}

	for _, tt := range tests {
		res := typ.SafeParse(tt.value)
		if res.Success == tt.wantErr {
			t.Errorf("SafeParse(%v) success = %v, wantErr %v", tt.value, res.Success, tt.wantErr)
		}
	}

	res := typ.SafeParse(math.NaN())
	if res.Error.Issues[0].Received != "nan" {
		t.Errorf("Received = %q, want nan", res.Error.Issues[0].Received)
	}
}

func TestNumberConstraints(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		value  any
		want   Code
	}{
		{"int", Number().Int(), 42.5, CodeNotInteger},
		{"int ok", Number().Int(), 42.0, ""},
		{"min", Number().Min(18), 17, CodeTooSmall},
		{"min inclusive", Number().Min(18), 18, ""},
		{"gt", Number().Gt(0), 0, CodeTooSmall},
		{"lt", Number().Lt(10), 10, CodeTooBig},
		{"max", Number().Max(10), 11, CodeTooBig},
		{"positive", Number().Positive(), -1, CodeTooSmall},
		{"nonnegative", Number().Nonnegative(), 0, ""},
		{"negative", Number().Negative(), 0, CodeTooBig},
		{"nonpositive", Number().Nonpositive(), 1, CodeTooBig},
		{"multiple of", Number().MultipleOf(5), 12, CodeNotMultipleOf},
		{"multiple of float", Number().MultipleOf(0.1), 0.3, ""},
		{"finite", Number().Finite(), math.Inf(1), CodeNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstCode(tt.schema.SafeParse(tt.value)); got != tt.want {
				t.Errorf("code = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumberKeepsInputType(t *testing.T) {
	res := Number().SafeParse(int64(7))
	if !res.Success {
		t.Fatalf("unexpected failure: %v", res.Error)
	}
	if _, ok := res.Data.(int64); !ok {
		t.Errorf("Data = %T, want int64", res.Data)
	}
}

func TestBooleanAndAny(t *testing.T) {
	if !Boolean().SafeParse(false).Success {
		t.Error("Boolean rejected false")
	}
	if Boolean().SafeParse("true").Success {
		t.Error("Boolean accepted a string")
	}
	for _, v := range []any{nil, 1, "x", Undefined, []int{1}} {
		if !Any().SafeParse(v).Success {
			t.Errorf("Any rejected %v", v)
		}
	}
}

func TestDateSchema(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		schema Schema
		value  any
		want   Code
	}{
		{"time", Date(), jan, ""},
		{"string without coerce", Date(), "2024-01-01", CodeInvalidType},
		{"coerce date", Date().Coerce(), "2024-01-01", ""},
		{"coerce rfc3339", Date().Coerce(), "2024-01-01T10:00:00Z", ""},
		{"coerce garbage", Date().Coerce(), "yesterday", CodeInvalidDate},
		{"zero", Date(), time.Time{}, CodeInvalidDate},
		{"min", Date().Min(jan), jan.Add(-time.Hour), CodeTooSmall},
		{"max", Date().Max(jan), jan.Add(time.Hour), CodeTooBig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstCode(tt.schema.SafeParse(tt.value)); got != tt.want {
				t.Errorf("code = %q, want %q", got, tt.want)
			}
		})
	}

	res := Date().Coerce().SafeParse("2024-01-01")
	if got, ok := res.Data.(time.Time); !ok || !got.Equal(jan) {
		t.Errorf("Data = %v, want %v", res.Data, jan)
	}
}

func TestLiteralAndEnum(t *testing.T) {
	if !Literal(1).SafeParse(int64(1)).Success {
		t.Error("Literal(1) rejected int64(1)")
	}
	if !Literal(nil).SafeParse(nil).Success {
		t.Error("Literal(nil) rejected nil")
	}

	res := Literal("admin").SafeParse("user")
	if got, want := res.Error.Issues[0].Message, `Invalid literal value, expected "admin"`; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}

	role := Enum("admin", "user", "guest")
	if role.Name() != "'admin' | 'user' | 'guest'" {
		t.Errorf("Name() = %q", role.Name())
	}
	res = role.SafeParse("manager")
	if firstCode(res) != CodeInvalidEnumValue {
		t.Fatalf("code = %q, want %q", firstCode(res), CodeInvalidEnumValue)
	}
	if got, want := res.Error.Issues[0].Message, "Invalid enum value. Expected 'admin' | 'user' | 'guest', received 'manager'"; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
	if firstCode(role.SafeParse(1)) != CodeInvalidType {
		t.Error("Enum accepted a number")
	}

	if got := role.Exclude("guest").Options(); len(got) != 2 {
		t.Errorf("Exclude() options = %v", got)
	}
	if got := role.Extract("user").Options(); len(got) != 1 || got[0] != "user" {
		t.Errorf("Extract() options = %v", got)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func()
	}{
		{"empty enum", func() { Enum() }},
		{"duplicate enum", func() { Enum("a", "a") }},
		{"single union", func() { Union(String()) }},
		{"negative min", func() { String().Min(-1) }},
		{"max below min", func() { String().Min(5).Max(2) }},
		{"number bounds", func() { Number().Min(10).Max(1) }},
		{"bad regex", func() { String().Regex("(") }},
		{"zero step", func() { Number().MultipleOf(0) }},
		{"composite literal", func() { Literal([]int{1}) }},
		{"duplicate field", func() { Object(Field("a", String()), Field("a", Number())) }},
		{"pick unknown", func() { Object(Field("a", String())).Pick("b") }},
		{"nil refine", func() { String().Refine(nil, "") }},
		{"discriminator missing", func() {
			DiscriminatedUnion("type", Object(Field("type", Literal("a"))), Object(Field("kind", Literal("b"))))
		}},
		{"discriminator duplicate", func() {
			DiscriminatedUnion("type", Object(Field("type", Literal("a"))), Object(Field("type", Enum("a", "b"))))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				var berr *BuildError
				if !ok || !errors.As(err, &berr) {
					t.Errorf("recover() = %v, want *BuildError", r)
				}
			}()
			tt.build()
		})
	}
}

func TestPathString(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{nil, ""},
		{Path{"name"}, "name"},
		{Path{"address", "zip"}, "address.zip"},
		{Path{"tags", 2}, "tags[2]"},
		{Path{"items", 0, "price"}, "items[0].price"},
		{Path{0}, "[0]"},
		{Path{"scores", 1.5}, "scores[1.5]"},
		{Path{"scores", MapKey{"alice"}}, "scores[alice]"},
		{Path{MapKey{3}, "name"}, "[3].name"},
	}

	for _, tt := range tests {
		if got := tt.path.String(); got != tt.want {
			t.Errorf("Path%v.String() = %q, want %q", []any(tt.path), got, tt.want)
		}
	}
}

func TestCodeCategory(t *testing.T) {
	tests := map[Code]Category{
		CodeInvalidType:      StructuralMismatch,
		CodeInvalidUnion:     StructuralMismatch,
		CodeTooSmall:         ConstraintViolation,
		CodeUnrecognizedKeys: ConstraintViolation,
		CodeRequired:         RequiredFieldMissing,
		CodeCustom:           RefinementFailed,
		CodeTransformFailed:  TransformFailed,
		CodeMaxDepthExceeded: MaxDepthExceeded,
	}
	for code, want := range tests {
		if got := code.Category(); got != want {
			t.Errorf("%s.Category() = %q, want %q", code, got, want)
		}
	}
}
