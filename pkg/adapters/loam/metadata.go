package loam

// DefinitionMetadata is the header of a definition document. In Markdown
// files it is the front matter; YAML and JSON files carry it at the top level.
//
//	---
//	name: user
//	schema:
//	  type: object
//	  fields:
//	    email: {type: string, format: email}
//	---
//	Registered user. The body becomes the description when the schema has none.
type DefinitionMetadata struct {
	// Name defaults to the file name without its extension.
	Name   string         `json:"name" mapstructure:"name"`
	Schema map[string]any `json:"schema" mapstructure:"schema"`
}
