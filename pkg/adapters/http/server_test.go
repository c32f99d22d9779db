package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/sift/pkg/catalog"
	"github.com/aretw0/sift/pkg/observability"
	"github.com/aretw0/sift/pkg/schema"
)

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	c := catalog.New()
	user := schema.Object(
		schema.Field("name", schema.String().Min(2)),
		schema.Field("age", schema.Number().Int().Min(18)),
		schema.Field("role", schema.Enum("admin", "user").Default("user")),
	)
	if err := c.Register("User", user); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return NewHandler(c, opts...)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetHealth(t *testing.T) {
	w := do(newTestHandler(t), "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected CORS header, got %q", got)
	}
}

func TestListSchemas(t *testing.T) {
	w := do(newTestHandler(t), "GET", "/schemas", "")
	var names []string
	if err := json.Unmarshal(w.Body.Bytes(), &names); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(names) != 1 || names[0] != "User" {
		t.Errorf("Expected [User], got %v", names)
	}
}

func TestValidate(t *testing.T) {
	h := newTestHandler(t)

	t.Run("Success", func(t *testing.T) {
		w := do(h, "POST", "/schemas/User/validate", `{"name":"Ada","age":36,"extra":true}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200 OK, got %d", w.Code)
		}
		var resp ValidationResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if !resp.Success {
			t.Fatalf("Expected success, got %s", w.Body.String())
		}
		data, ok := resp.Data.(map[string]any)
		if !ok {
			t.Fatalf("Expected object data, got %T", resp.Data)
		}
		if data["role"] != "user" {
			t.Errorf("Expected default role, got %v", data["role"])
		}
		if _, ok := data["extra"]; ok {
			t.Error("Expected unknown key to be stripped")
		}
	})

	t.Run("Failure", func(t *testing.T) {
		w := do(h, "POST", "/schemas/User/validate", `{"name":"A","age":16.5}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200 OK, got %d", w.Code)
		}
		var resp struct {
			Success bool             `json:"success"`
			Issues  []map[string]any `json:"issues"`
			Format  map[string]any   `json:"format"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if resp.Success {
			t.Fatal("Expected failure")
		}
		codes := map[string]bool{}
		for _, issue := range resp.Issues {
			codes[issue["code"].(string)] = true
		}
		for _, code := range []string{"too_small", "not_integer"} {
			if !codes[code] {
				t.Errorf("Expected issue %s in %s", code, w.Body.String())
			}
		}
		if _, ok := resp.Format["name"]; !ok {
			t.Errorf("Expected formatted errors for name, got %v", resp.Format)
		}
	})

	t.Run("Unknown Schema", func(t *testing.T) {
		w := do(h, "POST", "/schemas/Missing/validate", `{}`)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		w := do(h, "POST", "/schemas/User/validate", `{"name":`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("Body Too Large", func(t *testing.T) {
		body := `"` + strings.Repeat("a", MaxBodyBytes) + `"`
		w := do(h, "POST", "/schemas/User/validate", body)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected 413, got %d", w.Code)
		}
	})
}

func TestDescribeSchema(t *testing.T) {
	h := newTestHandler(t)

	w := do(h, "GET", "/schemas/User", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("Expected ETag header")
	}
	var desc struct {
		Name   string `json:"name"`
		Schema struct {
			Kind string `json:"kind"`
		} `json:"schema"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &desc); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if desc.Name != "User" || desc.Schema.Kind != "object" {
		t.Errorf("Unexpected description: %s", w.Body.String())
	}

	req := httptest.NewRequest("GET", "/schemas/User", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	h.ServeHTTP(cached, req)
	if cached.Code != http.StatusNotModified {
		t.Errorf("Expected 304, got %d", cached.Code)
	}

	if w := do(h, "GET", "/schemas/Missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestGetOpenAPI(t *testing.T) {
	w := do(newTestHandler(t), "GET", "/openapi.json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", w.Code)
	}
	var doc struct {
		OpenAPI    string `json:"openapi"`
		Components struct {
			Schemas map[string]any `json:"schemas"`
		} `json:"components"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if doc.OpenAPI != "3.0.3" {
		t.Errorf("Expected 3.0.3, got %q", doc.OpenAPI)
	}
	if _, ok := doc.Components.Schemas["User"]; !ok {
		t.Error("Expected User component")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	if w := do(newTestHandler(t), "GET", "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without metrics, got %d", w.Code)
	}

	m, err := observability.NewMetrics(nil)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	c := catalog.New(catalog.WithHooks(m.Hooks()))
	if err := c.Register("Name", schema.String()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	h := NewHandler(c, WithMetrics(m.Handler()))
	do(h, "POST", "/schemas/Name/validate", `"ok"`)

	w := do(h, "GET", "/metrics", "")
	if !strings.Contains(w.Body.String(), `sift_validations_total{outcome="success",schema="Name"} 1`) {
		t.Errorf("Expected validation counter, got:\n%s", w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	w := do(newTestHandler(t), "OPTIONS", "/schemas/User/validate", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 OK, got %d", w.Code)
	}
}
