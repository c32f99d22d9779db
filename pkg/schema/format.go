package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Flatten returns every issue in walk order. The branches of an
// invalid_union issue follow the union issue itself.
func (e *ValidationError) Flatten() []Issue {
	var out []Issue
	var walk func(issues []Issue)
	walk = func(issues []Issue) {
		for _, issue := range issues {
			out = append(out, issue)
			for _, branch := range issue.UnionIssues {
				walk(branch)
			}
		}
	}
	walk(e.Issues)
	return out
}

// FieldErrors groups issue messages by rendered path. Issues located at the
// root are keyed by the empty string.
func (e *ValidationError) FieldErrors() map[string][]string {
	fields := make(map[string][]string)
	for _, issue := range e.Issues {
		key := issue.Path.String()
		fields[key] = append(fields[key], issue.Message)
	}
	return fields
}

// FormattedError is the tree view of a ValidationError: each node lists the
// messages located exactly at its path and nests one child per segment.
type FormattedError struct {
	Errors []string
	Fields map[string]*FormattedError
}

// Format builds the tree view. Union failures contribute the issues of each
// alternative instead of their own summary message.
func (e *ValidationError) Format() *FormattedError {
	root := &FormattedError{Errors: []string{}}
	var add func(issues []Issue)
	add = func(issues []Issue) {
		for _, issue := range issues {
			if issue.Code == CodeInvalidUnion && len(issue.UnionIssues) > 0 {
				for _, branch := range issue.UnionIssues {
					add(branch)
				}
				continue
			}
			node := root
			for _, seg := range issue.Path {
				node = node.child(fmt.Sprint(seg))
			}
			node.Errors = append(node.Errors, issue.Message)
		}
	}
	add(e.Issues)
	return root
}

func (f *FormattedError) child(key string) *FormattedError {
	if f.Fields == nil {
		f.Fields = make(map[string]*FormattedError)
	}
	c, ok := f.Fields[key]
	if !ok {
		c = &FormattedError{Errors: []string{}}
		f.Fields[key] = c
	}
	return c
}

// Get walks down the tree; it returns nil when no issue lives under path.
func (f *FormattedError) Get(path ...any) *FormattedError {
	node := f
	for _, seg := range path {
		if node == nil || node.Fields == nil {
			return nil
		}
		node = node.Fields[fmt.Sprint(seg)]
	}
	return node
}

// MarshalJSON encodes the tree as {"_errors": [...], "<segment>": {...}}.
func (f *FormattedError) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"_errors":`)
	errs, err := json.Marshal(f.Errors)
	if err != nil {
		return nil, err
	}
	buf.Write(errs)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		child, err := f.Fields[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(child)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
