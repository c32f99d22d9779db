package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/sift/internal/presentation/tui"
	"github.com/aretw0/sift/pkg/definition"
	"github.com/muesli/termenv"
)

// ErrValidationFailed is returned when the input does not match the schema.
// The report has already been written, so callers only set the exit code.
var ErrValidationFailed = errors.New("validation failed")

// ValidateOptions configures RunValidate.
type ValidateOptions struct {
	Schema    string
	InputPath string
	JSON      bool
	Diff      bool
	// Rich renders markdown with glamour; set when stdout is a terminal.
	Rich bool
}

// LoadInput reads the document to validate. "-" reads stdin as JSON.
func LoadInput(path string, stdin io.Reader) (any, error) {
	if path == "" {
		return nil, errors.New("--input is required")
	}
	var (
		data   []byte
		err    error
		format = definition.FormatFromPath(path)
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
		format = definition.FormatJSON
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	input, err := definition.DecodeInput(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return input, nil
}

type jsonReport struct {
	Schema  string              `json:"schema"`
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Issues  any                 `json:"issues,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Diff    string              `json:"diff,omitempty"`
}

// RunValidate validates one input document and writes the report to out.
// It returns ErrValidationFailed when the input has issues.
func RunValidate(ctx context.Context, s *Session, opts ValidateOptions, stdin io.Reader, out io.Writer) error {
	name, err := s.ResolveSchema(opts.Schema)
	if err != nil {
		return err
	}
	input, err := LoadInput(opts.InputPath, stdin)
	if err != nil {
		return err
	}
	res, err := s.Validator.Validate(ctx, name, input)
	if err != nil {
		return err
	}

	var diff string
	if opts.Diff && res.Success {
		if diff, err = tui.Diff(input, res.Data); err != nil {
			return err
		}
	}

	report := tui.Report{Schema: name, Source: opts.InputPath, Result: res}
	switch {
	case opts.JSON:
		jr := jsonReport{Schema: name, Success: res.Success, Diff: diff}
		if res.Success {
			jr.Data = res.Data
		} else {
			jr.Issues = res.Error.Issues
			jr.Fields = res.Error.FieldErrors()
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jr); err != nil {
			return err
		}
	case opts.Rich:
		fmt.Fprintln(out, tui.Status(termenv.NewOutput(out), report))
		rendered, err := tui.NewRenderer()(tui.Markdown(report))
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		if diff != "" {
			fmt.Fprintf(out, "\n%s", diff)
		}
	default:
		fmt.Fprint(out, tui.Plain(report))
		if diff != "" {
			fmt.Fprintf(out, "\n%s", diff)
		}
	}

	if !res.Success {
		return ErrValidationFailed
	}
	return nil
}
