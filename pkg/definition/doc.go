// Package definition holds the declarative form of schemas.
//
// A Definition is read from YAML, JSON or a generic map and compiled into a
// schema tree:
//
//	def, err := definition.Parse(data, definition.FormatYAML)
//	s, err := definition.Compile(def, nil)
//
// Object fields keep the order they were written in. Refs are resolved
// through a Resolver, usually backed by a catalog.
package definition
