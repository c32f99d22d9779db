/*
Package sift validates untyped data (decoded JSON, YAML, form values) against
schemas and reports every problem it finds as a path-tagged issue.

Schemas are immutable trees built with the fluent API of pkg/schema, or
declared in YAML/JSON definition documents (pkg/definition) and kept in a
catalog (pkg/catalog) fed by a definition store: a directory of documents,
Redis, SQLite or memory. The catalog is served over HTTP, MCP and the sift
command line.

# Usage

Build a schema in code and validate a value:

	user := schema.Object(
		schema.Field("name", schema.String().Min(2)),
		schema.Field("age", schema.Number().Int().Min(18)),
	)

	res := user.SafeParse(map[string]any{"name": "A", "age": 16})
	if !res.Success {
		for _, issue := range res.Error.Issues {
			fmt.Println(issue.Path, issue.Message)
		}
	}

Or load named schemas from a directory of definitions:

	v, err := sift.Open("./schemas")
	if err != nil {
		log.Fatal(err)
	}
	res, err := v.Validate(ctx, "user", input)
*/
package sift
