package openapi

import (
	"net/http"

	"github.com/aretw0/sift/pkg/catalog"
	"github.com/getkin/kin-openapi/openapi3"
)

// Info identifies the generated document.
type Info struct {
	Title   string
	Version string
}

// Document describes the HTTP API served by pkg/adapters/http, with every
// catalog schema as a component.
func Document(c *catalog.Catalog, info Info) (*openapi3.T, error) {
	if info.Title == "" {
		info.Title = "sift"
	}
	if info.Version == "" {
		info.Version = "dev"
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	for _, name := range c.Names() {
		d, err := c.Describe(name)
		if err != nil {
			return nil, err
		}
		components.Schemas[name] = Schema(d.Schema)
	}
	components.Schemas["Issue"] = value(issueSchema())
	components.Schemas["ValidationResponse"] = value(validationResponseSchema())

	doc := &openapi3.T{
		OpenAPI:    "3.0.3",
		Info:       &openapi3.Info{Title: info.Title, Version: info.Version},
		Paths:      openapi3.NewPaths(),
		Components: &components,
	}

	health := operation("getHealth", "Liveness probe")
	health.AddResponse(http.StatusOK, jsonResponse("Service is up", value(openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewStringSchema()))))
	doc.Paths.Set("/health", &openapi3.PathItem{Get: health})

	list := operation("listSchemas", "List registered schema names")
	list.AddResponse(http.StatusOK, jsonResponse("Schema names", value(openapi3.NewArraySchema().
		WithItems(openapi3.NewStringSchema()))))
	doc.Paths.Set("/schemas", &openapi3.PathItem{Get: list})

	describe := operation("describeSchema", "Describe a schema")
	describe.AddParameter(nameParameter())
	describe.AddResponse(http.StatusOK, jsonResponse("Schema description", value(openapi3.NewObjectSchema())))
	describe.AddResponse(http.StatusNotFound, errorResponse("Unknown schema"))
	doc.Paths.Set("/schemas/{name}", &openapi3.PathItem{Get: describe})

	validate := operation("validate", "Validate a JSON document against a schema")
	validate.AddParameter(nameParameter())
	validate.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithRequired(true).
		WithDescription("Any JSON value").
		WithJSONSchema(&openapi3.Schema{})}
	validate.AddResponse(http.StatusOK, jsonResponse("Validation outcome",
		openapi3.NewSchemaRef(ComponentPrefix+"ValidationResponse", nil)))
	validate.AddResponse(http.StatusBadRequest, errorResponse("Body is not valid JSON"))
	validate.AddResponse(http.StatusNotFound, errorResponse("Unknown schema"))
	doc.Paths.Set("/schemas/{name}/validate", &openapi3.PathItem{Post: validate})

	return doc, nil
}

func operation(id, summary string) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	return op
}

func nameParameter() *openapi3.Parameter {
	return openapi3.NewPathParameter("name").WithSchema(openapi3.NewStringSchema())
}

func jsonResponse(description string, body *openapi3.SchemaRef) *openapi3.Response {
	return openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(body)
}

func errorResponse(description string) *openapi3.Response {
	return jsonResponse(description, value(openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema())))
}

func issueSchema() *openapi3.Schema {
	path := openapi3.NewArraySchema().WithItems(&openapi3.Schema{OneOf: openapi3.SchemaRefs{
		value(openapi3.NewStringSchema()),
		value(openapi3.NewIntegerSchema()),
	}})
	s := openapi3.NewObjectSchema().
		WithProperty("code", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("path", path).
		WithProperty("expected", openapi3.NewStringSchema()).
		WithProperty("received", openapi3.NewStringSchema()).
		WithProperty("keys", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
	s.Required = []string{"code", "message", "path"}
	return s
}

func validationResponseSchema() *openapi3.Schema {
	issues := openapi3.NewArraySchema()
	issues.Items = openapi3.NewSchemaRef(ComponentPrefix+"Issue", nil)

	s := openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("data", &openapi3.Schema{Nullable: true}).
		WithProperty("issues", issues).
		WithProperty("format", openapi3.NewObjectSchema().WithAnyAdditionalProperties())
	s.Required = []string{"success"}
	return s
}
