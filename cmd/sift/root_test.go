package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/sift"
	"github.com/aretw0/sift/internal/cli"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "sift version "+strings.TrimSpace(sift.Version)+"\n" {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "age.json")
	inputPath := filepath.Join(dir, "input.json")
	if err := os.WriteFile(schemaPath, []byte(`{"type": "integer", "min": 18}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(inputPath, []byte(`12`), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "validate", schemaPath, "--input", inputPath, "--json")
	if err != cli.ErrValidationFailed {
		t.Fatalf("Expected ErrValidationFailed, got %v", err)
	}
	if !strings.Contains(out, `"code": "too_small"`) {
		t.Errorf("Expected too_small issue, got:\n%s", out)
	}
}
