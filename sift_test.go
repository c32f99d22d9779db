package sift_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/sift"
	"github.com/aretw0/sift/pkg/adapters/memory"
	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/domain"
	"github.com/aretw0/sift/pkg/observability"
	"github.com/aretw0/sift/pkg/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFacade_Open(t *testing.T) {
	repoPath := t.TempDir()
	content := []byte(`---
name: user
schema:
  type: object
  fields:
    email: {type: string, format: email}
    age: {type: integer, min: 18}
---
A registered user.`)
	if err := os.WriteFile(filepath.Join(repoPath, "user.md"), content, 0644); err != nil {
		t.Fatal(err)
	}

	v, err := sift.Open(repoPath)
	if err != nil {
		t.Fatalf("Failed to open catalog at %s: %v", repoPath, err)
	}
	if v.Name != filepath.Base(repoPath) {
		t.Errorf("Expected name %q, got %q", filepath.Base(repoPath), v.Name)
	}

	ctx := context.Background()
	res, err := v.Validate(ctx, "user", map[string]any{"email": "ada@example.com", "age": 36})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("Expected success, got %v", res.Error)
	}

	res, err = v.Validate(ctx, "user", map[string]any{"email": "nope", "age": 12})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if res.Success || len(res.Error.Issues) != 2 {
		t.Fatalf("Expected 2 issues, got %+v", res)
	}

	desc, err := v.Catalog().Describe("user")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if desc.Definition.Description != "A registered user." {
		t.Errorf("Expected body as description, got %q", desc.Definition.Description)
	}
}

func TestFacade_UnknownSchema(t *testing.T) {
	v, err := sift.New()
	if err != nil {
		t.Fatal(err)
	}
	_, err = v.Validate(context.Background(), "missing", nil)
	if !errors.Is(err, domain.ErrSchemaNotFound) {
		t.Errorf("Expected ErrSchemaNotFound, got %v", err)
	}
	if _, err := v.Reload(context.Background()); err == nil {
		t.Error("Expected Reload without a store to fail")
	}
	if _, err := v.Watch(context.Background()); err == nil {
		t.Error("Expected Watch without a store to fail")
	}
}

func TestFacade_StoreAndMetrics(t *testing.T) {
	def, err := definition.Parse([]byte(`{"type": "string", "min": 3}`), definition.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	store, err := memory.NewStore(map[string]*definition.Definition{"code": def})
	if err != nil {
		t.Fatal(err)
	}
	m, err := observability.NewMetrics(nil)
	if err != nil {
		t.Fatal(err)
	}

	var events int
	v, err := sift.New(
		sift.WithStore(store),
		sift.WithMetrics(m),
		sift.WithLifecycleHooks(domain.LifecycleHooks{
			OnValidate: func(ctx context.Context, e *domain.ValidationEvent) { events++ },
		}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if _, err := v.Validate(ctx, "code", "ab"); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Validate(ctx, "code", "abc"); err != nil {
		t.Fatal(err)
	}
	if events != 2 {
		t.Errorf("Expected 2 hook calls, got %d", events)
	}
	if got := testutil.CollectAndCount(m.Registry(), "sift_validations_total"); got != 2 {
		t.Errorf("Expected 2 outcome series, got %d", got)
	}

	longer, err := definition.Parse([]byte(`{"type": "string", "min": 5}`), definition.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "code", longer); err != nil {
		t.Fatal(err)
	}
	if n, err := v.Reload(ctx); err != nil || n != 1 {
		t.Fatalf("Reload = %d, %v", n, err)
	}
	res, _ := v.Validate(ctx, "code", "abc")
	if res.Success {
		t.Error("Expected reloaded definition to reject a 3-character code")
	}
}

func TestFacade_MaxDepth(t *testing.T) {
	v, err := sift.New(sift.WithMaxDepth(2))
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Register("nested", schema.Array(schema.Array(schema.Array(schema.Number())))); err != nil {
		t.Fatal(err)
	}
	res, err := v.Validate(context.Background(), "nested", []any{[]any{[]any{1}}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Success || res.Error.Issues[0].Code != schema.CodeMaxDepthExceeded {
		t.Errorf("Expected max_depth_exceeded, got %+v", res)
	}
}

func TestFacade_Follow(t *testing.T) {
	v, err := sift.New(sift.WithStore(mustStore(t)))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := v.Follow(ctx); err == nil {
		t.Error("Expected Follow on a memory store to fail")
	}
}

func mustStore(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.NewStore(nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}
