package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/sift"
	"github.com/aretw0/sift/internal/presentation/graph"
	"github.com/aretw0/sift/pkg/openapi"
	"github.com/aretw0/sift/pkg/schema"
)

// RunDescribe writes the description of a schema as JSON, or as an OpenAPI
// schema object.
func RunDescribe(s *Session, arg string, asOpenAPI bool, out io.Writer) error {
	name, err := s.ResolveSchema(arg)
	if err != nil {
		return err
	}
	desc, err := s.Validator.Catalog().Describe(name)
	if err != nil {
		return err
	}

	var v any = desc
	if asOpenAPI {
		v = openapi.Schema(desc.Schema)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RunOpenAPI writes the OpenAPI document of the HTTP API for the catalog.
func RunOpenAPI(s *Session, out io.Writer) error {
	doc, err := openapi.Document(s.Validator.Catalog(), openapi.Info{
		Title:   "sift",
		Version: strings.TrimSpace(sift.Version),
	})
	if err != nil {
		return err
	}
	data, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// RunList writes the registered schema names, one per line.
func RunList(s *Session, out io.Writer) error {
	for _, name := range s.Validator.Catalog().Names() {
		if _, err := fmt.Fprintln(out, name); err != nil {
			return err
		}
	}
	return nil
}

// RunGraph writes a Mermaid flowchart of the catalog's references.
func RunGraph(s *Session, out io.Writer) error {
	c := s.Validator.Catalog()
	descs := make(map[string]*schema.Descriptor, c.Len())
	for _, name := range c.Names() {
		d, err := c.Describe(name)
		if err != nil {
			return err
		}
		descs[name] = d.Schema
	}
	_, err := fmt.Fprint(out, graph.GenerateMermaid(descs))
	return err
}
