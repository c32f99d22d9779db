package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/sift/pkg/catalog"
	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/domain"
	"github.com/aretw0/sift/pkg/openapi"
	"github.com/aretw0/sift/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// MaxBodyBytes caps validation request bodies.
const MaxBodyBytes = 1 << 20

// Server serves a catalog over HTTP.
type Server struct {
	Catalog *catalog.Catalog
	// Metrics, when set, is served on GET /metrics.
	Metrics http.Handler
	Info    openapi.Info
	Logger  *slog.Logger
}

// Option configures the handler built by NewHandler.
type Option func(*Server)

// WithMetrics exposes h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithInfo sets the title and version of the served OpenAPI document.
func WithInfo(info openapi.Info) Option {
	return func(s *Server) {
		s.Info = info
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the catalog.
func NewHandler(c *catalog.Catalog, opts ...Option) http.Handler {
	server := &Server{Catalog: c}
	for _, opt := range opts {
		opt(server)
	}
	if server.Logger == nil {
		server.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/schemas", server.ListSchemas)
	r.Get("/schemas/{name}", server.withName(server.DescribeSchema))
	r.Post("/schemas/{name}/validate", server.withName(server.Validate))
	r.Get("/openapi.json", server.GetOpenAPI)
	if server.Metrics != nil {
		r.Handle("/metrics", server.Metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match")
		w.Header().Set("Access-Control-Expose-Headers", "ETag")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withName binds the {name} path parameter.
func (s *Server) withName(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var name string
		err := runtime.BindStyledParameterWithOptions("simple", "name", chi.URLParam(r, "name"), &name,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter name: %v", err))
			return
		}
		next(w, r, name)
	}
}

// ValidationResponse is the body of POST /schemas/{name}/validate.
type ValidationResponse struct {
	Success bool                   `json:"success"`
	Data    any                    `json:"data,omitempty"`
	Issues  []schema.Issue         `json:"issues,omitempty"`
	Format  *schema.FormattedError `json:"format,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListSchemas handles the GET /schemas request.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Names())
}

// DescribeSchema handles the GET /schemas/{name} request. The fingerprint
// doubles as the ETag.
func (s *Server) DescribeSchema(w http.ResponseWriter, r *http.Request, name string) {
	desc, err := s.Catalog.Describe(name)
	if err != nil {
		s.fail(w, err)
		return
	}
	etag := `"` + desc.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

// Validate handles the POST /schemas/{name}/validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request, name string) {
	if _, ok := s.Catalog.Lookup(name); !ok {
		s.fail(w, fmt.Errorf("%w: %s", domain.ErrSchemaNotFound, name))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	input, err := definition.DecodeInput(body, definition.FormatJSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.Logger.Warn("Validate: Invalid request body", "schema", name, "error", err)
		return
	}

	res, err := s.Catalog.Validate(r.Context(), name, input)
	if err != nil {
		s.fail(w, err)
		return
	}

	resp := ValidationResponse{Success: res.Success}
	if res.Success {
		resp.Data = res.Data
	} else {
		resp.Issues = res.Error.Issues
		resp.Format = res.Error.Format()
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOpenAPI handles the GET /openapi.json request.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := openapi.Document(s.Catalog, s.Info)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrSchemaNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal error")
	s.Logger.Error("Request failed", "error", err)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
