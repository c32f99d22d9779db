package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/sift/pkg/schema"
)

// Edge is a reference from one schema to another, found at Path.
type Edge struct {
	From, To string
	Path     string
}

// Refs lists the references made by the schema d, registered as name, in
// the order they appear.
func Refs(name string, d *schema.Descriptor) []Edge {
	var edges []Edge
	var walk func(d *schema.Descriptor, path string)
	walk = func(d *schema.Descriptor, path string) {
		if d == nil {
			return
		}
		if d.Ref != "" {
			edges = append(edges, Edge{From: name, To: d.Ref, Path: path})
			return
		}
		walk(d.Inner, path)
		walk(d.Element, path+"[]")
		walk(d.Key, path+"{key}")
		walk(d.Value, path+"{}")
		for _, f := range d.Fields {
			walk(f.Schema, join(path, f.Name))
		}
		for i, o := range d.Options {
			walk(o, fmt.Sprintf("%s|%d", path, i))
		}
	}
	walk(d, "")
	return edges
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

// GenerateMermaid produces a Mermaid flowchart of a catalog: one node per
// schema, one edge per reference. It applies semantic styling:
// - Object: [Rectangle]
// - Union: {{Hexagon}}
// - Enum/Literal: [/Parallelogram/]
// - Collections: [[Subroutine]]
// - Default: (Rounded)
// Self references are drawn dotted. Names absent from schemas are shown as
// unresolved.
func GenerateMermaid(schemas map[string]*schema.Descriptor) string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	missing := map[string]bool{}
	for _, name := range names {
		d := schemas[name]
		opener, closer := shape(d)
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> %s\"%s\n", sanitizeMermaidID(name), opener, name, label(d), closer)

		for _, e := range Refs(name, d) {
			if _, ok := schemas[e.To]; !ok {
				missing[e.To] = true
			}
			arrow := "-->"
			if e.To == e.From {
				arrow = "-.->"
			}
			if e.Path != "" {
				safePath := strings.ReplaceAll(e.Path, "\"", "'")
				arrow = fmt.Sprintf("-- \"%s\" -->", safePath)
				if e.To == e.From {
					arrow = fmt.Sprintf("-. \"%s\" .->", safePath)
				}
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.From), arrow, sanitizeMermaidID(e.To))
		}
	}

	if len(missing) > 0 {
		sb.WriteString("\n    %% Unresolved references\n")
		sb.WriteString("    classDef missing fill:#fee2e2,stroke:#b91c1c,stroke-dasharray:4,color:#000;\n")
		unresolved := make([]string, 0, len(missing))
		for name := range missing {
			unresolved = append(unresolved, name)
		}
		sort.Strings(unresolved)
		for _, name := range unresolved {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n    class %s missing;\n", sanitizeMermaidID(name), name, sanitizeMermaidID(name))
		}
	}
	return sb.String()
}

// core skips the wrappers that do not change what a schema is.
func core(d *schema.Descriptor) *schema.Descriptor {
	for d.Inner != nil {
		switch d.Kind {
		case schema.KindOptional, schema.KindNullable, schema.KindDefault, schema.KindRefined, schema.KindTransformed:
			d = d.Inner
		default:
			return d
		}
	}
	return d
}

func shape(d *schema.Descriptor) (string, string) {
	switch core(d).Kind {
	case schema.KindObject:
		return "[", "]"
	case schema.KindUnion, schema.KindDiscriminatedUnion:
		return "{{", "}}"
	case schema.KindEnum, schema.KindLiteral:
		return "[/", "/]"
	case schema.KindArray, schema.KindSet, schema.KindMap:
		return "[[", "]]"
	}
	return "(", ")"
}

func label(d *schema.Descriptor) string {
	c := core(d)
	switch c.Kind {
	case schema.KindObject:
		return fmt.Sprintf("object, %d fields", len(c.Fields))
	case schema.KindUnion:
		return fmt.Sprintf("union of %d", len(c.Options))
	case schema.KindDiscriminatedUnion:
		return fmt.Sprintf("union on %s", c.Discriminator)
	case schema.KindLazy:
		return "ref " + c.Ref
	}
	return string(c.Kind)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
