package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/sift"
	"github.com/aretw0/sift/pkg/catalog"
	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SchemasURI is the resource listing every registered schema.
const SchemasURI = "sift://schemas"

// ListResponse is the output of list_schemas.
type ListResponse struct {
	Schemas []string `json:"schemas" jsonschema_description:"Registered schema names, sorted"`
}

// ValidateResponse mirrors the HTTP validation response.
type ValidateResponse struct {
	Success bool                `json:"success" jsonschema_description:"Whether the input satisfied the schema"`
	Data    any                 `json:"data,omitempty" jsonschema_description:"The validated (and transformed) value"`
	Issues  []schema.Issue      `json:"issues,omitempty" jsonschema_description:"Validation issues, one per failed check"`
	Fields  map[string][]string `json:"fields,omitempty" jsonschema_description:"Issue messages keyed by dotted path"`
}

type describeArgs struct {
	Name string `json:"name"`
}

type validateArgs struct {
	Name  string `json:"name"`
	Input string `json:"input"`
}

// Server exposes a catalog as an MCP server.
type Server struct {
	catalog   *catalog.Catalog
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(c *catalog.Catalog) *Server {
	s := &Server{
		catalog:   c,
		mcpServer: server.NewMCPServer("sift-mcp", strings.TrimSpace(sift.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
		return nil
	})

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_schemas",
		mcp.WithDescription("List the names of the registered schemas."),
		mcp.WithOutputSchema[ListResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("describe_schema",
		mcp.WithDescription("Describe a schema: its kind, constraints, fields and, when it came from a definition document, the definition."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Schema name")),
	), s.handleDescribe)

	validateTool := mcp.NewTool("validate",
		mcp.WithDescription("Validate a JSON document against a registered schema."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Schema name")),
		mcp.WithString("input", mcp.Required(), mcp.Description("The document to validate, as a JSON string")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args struct{}) (ListResponse, error) {
	return ListResponse{Schemas: s.catalog.Names()}, nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args describeArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	desc, err := s.catalog.Describe(args.Name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	jsonBytes, err := json.Marshal(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode description: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args validateArgs) (ValidateResponse, error) {
	if args.Name == "" {
		return ValidateResponse{}, errors.New("name is required")
	}
	input, err := definition.DecodeInput([]byte(args.Input), definition.FormatJSON)
	if err != nil {
		slog.Warn("MCP Validate: Input rejected", "error", err, "size", len(args.Input))
		return ValidateResponse{}, fmt.Errorf("input is not valid JSON: %w", err)
	}

	res, err := s.catalog.Validate(ctx, args.Name, input)
	if err != nil {
		return ValidateResponse{}, err
	}
	if res.Success {
		return ValidateResponse{Success: true, Data: res.Data}, nil
	}
	return ValidateResponse{
		Issues: res.Error.Issues,
		Fields: res.Error.FieldErrors(),
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SchemasURI, "Registered Schemas",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.describeAll()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SchemasURI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}

func (s *Server) describeAll() (string, error) {
	names := s.catalog.Names()
	all := make([]*catalog.Description, 0, len(names))
	for _, name := range names {
		d, err := s.catalog.Describe(name)
		if err != nil {
			return "", fmt.Errorf("failed to describe %s: %w", name, err)
		}
		all = append(all, d)
	}
	jsonBytes, err := json.Marshal(all)
	if err != nil {
		return "", fmt.Errorf("failed to encode schemas: %w", err)
	}
	return string(jsonBytes), nil
}
