// Package schema provides a declarative validation engine for untyped data.
//
// A schema is an immutable tree of nodes built with constructors and
// chainable modifiers. Validating a value walks the tree, collects every
// issue with its path, and either returns a cleaned output value or a
// *ValidationError listing all problems.
//
// Basic usage:
//
//	user := schema.Object(
//	    schema.Field("name", schema.String().Min(2)),
//	    schema.Field("age", schema.Number().Int().Min(18)),
//	    schema.Field("email", schema.String().Email()),
//	    schema.Field("tags", schema.Array(schema.String()).Optional()),
//	)
//
//	res := user.SafeParse(map[string]any{"name": "Al", "age": 20, "email": "al@example.com"})
//	if !res.Success {
//	    for _, issue := range res.Error.Issues {
//	        fmt.Println(issue.Path, issue.Message)
//	    }
//	}
//
// Absent object keys are handed to field schemas as Undefined; only
// Optional, Default and Any accept it. Nullable accepts nil.
//
// Every modifier returns a new node, so schemas can be shared freely across
// goroutines. Recursive shapes are expressed with Lazy or Ref:
//
//	var category schema.Schema
//	category = schema.Object(
//	    schema.Field("name", schema.String()),
//	    schema.Field("children", schema.Array(schema.Ref("Category", func() schema.Schema { return category }))),
//	)
//
// Malformed builder arguments, such as an empty enum, panic with a
// *BuildError at construction time.
package schema
