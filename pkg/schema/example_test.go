package schema_test

import (
	"fmt"
	"strings"

	"github.com/aretw0/sift/pkg/schema"
)

func ExampleObject() {
	user := schema.Object(
		schema.Field("name", schema.String().Min(2)),
		schema.Field("age", schema.Number().Int().Min(18)),
	)

	res := user.SafeParse(map[string]any{"name": "A", "age": 16})
	for _, issue := range res.Error.Issues {
		fmt.Println(issue.Path, issue.Message)
	}
	// Output:
	// name String must contain at least 2 character(s)
	// age Number must be greater than or equal to 18
}

func ExampleEnum() {
	role := schema.Enum("admin", "user", "guest")

	res := role.SafeParse("manager")
	fmt.Println(res.Error.Issues[0].Message)
	// Output:
	// Invalid enum value. Expected 'admin' | 'user' | 'guest', received 'manager'
}

func ExampleTransformFunc() {
	slug := schema.String().Min(1).Transform(schema.TransformFunc(func(s string) (string, error) {
		return strings.ReplaceAll(strings.ToLower(s), " ", "-"), nil
	}))

	out, err := slug.Parse("Hello World")
	fmt.Println(out, err)
	// Output:
	// hello-world <nil>
}

func ExampleValidationError_Format() {
	s := schema.Object(schema.Field("address", schema.Object(schema.Field("zip", schema.String()))))

	res := s.SafeParse(map[string]any{"address": map[string]any{}})
	fmt.Println(res.Error.Format().Get("address", "zip").Errors)
	// Output:
	// [Required]
}
