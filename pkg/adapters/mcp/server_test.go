package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/sift/pkg/catalog"
	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c := catalog.New()
	require.NoError(t, c.Register("Email", schema.String().Email()))
	def, err := definition.Parse([]byte(`
type: object
description: A person
fields:
  name: {type: string, min: 2}
  age: {type: integer, min: 18}
`), definition.FormatYAML)
	require.NoError(t, err)
	require.NoError(t, c.RegisterDefinition("Person", def))
	return NewServer(c)
}

func TestHandleList(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.handleList(context.Background(), mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "Person"}, resp.Schemas)
}

func TestHandleValidate(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		resp, err := s.handleValidate(ctx, mcp.CallToolRequest{}, validateArgs{Name: "Person", Input: `{"name":"Ada","age":36}`})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Issues)
	})

	t.Run("Failure", func(t *testing.T) {
		resp, err := s.handleValidate(ctx, mcp.CallToolRequest{}, validateArgs{Name: "Person", Input: `{"name":"A"}`})
		require.NoError(t, err)
		assert.False(t, resp.Success)
		require.Len(t, resp.Issues, 2)
		assert.Equal(t, schema.CodeTooSmall, resp.Issues[0].Code)
		assert.Equal(t, schema.CodeRequired, resp.Issues[1].Code)
		assert.Equal(t, []string{"Required"}, resp.Fields["age"])
	})

	t.Run("Unknown Schema", func(t *testing.T) {
		_, err := s.handleValidate(ctx, mcp.CallToolRequest{}, validateArgs{Name: "Missing", Input: `{}`})
		assert.Error(t, err)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := s.handleValidate(ctx, mcp.CallToolRequest{}, validateArgs{Name: "Email", Input: `not json`})
		assert.ErrorContains(t, err, "input is not valid JSON")
	})
}

func TestHandleDescribe(t *testing.T) {
	s := newTestServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Name = "describe_schema"
	req.Params.Arguments = map[string]any{"name": "Person"}
	res, err := s.handleDescribe(context.Background(), req)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var desc catalog.Description
	require.NoError(t, json.Unmarshal([]byte(text.Text), &desc))
	assert.Equal(t, "Person", desc.Name)
	assert.Equal(t, "A person", desc.Definition.Description)

	req.Params.Arguments = map[string]any{"name": "Missing"}
	res, err = s.handleDescribe(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDescribeAll(t *testing.T) {
	text, err := newTestServer(t).describeAll()
	require.NoError(t, err)

	var all []map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &all))
	require.Len(t, all, 2)
	assert.Equal(t, "Email", all[0]["name"])
	assert.Equal(t, "Person", all[1]["name"])
}
