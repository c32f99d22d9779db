package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/sift/pkg/schema"
	"github.com/muesli/termenv"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Report is the outcome of validating one document.
type Report struct {
	Schema string
	Source string
	Result schema.Result
}

// Status returns a one-line PASS/FAIL summary colored for out.
func Status(out *termenv.Output, r Report) string {
	label := out.String(" PASS ").Background(out.Color("#16a34a")).Foreground(out.Color("#ffffff")).Bold()
	detail := "valid"
	if !r.Result.Success {
		label = out.String(" FAIL ").Background(out.Color("#dc2626")).Foreground(out.Color("#ffffff")).Bold()
		detail = plural(len(r.Result.Error.Issues), "issue")
	}
	subject := r.Schema
	if r.Source != "" {
		subject = r.Source + " → " + r.Schema
	}
	return fmt.Sprintf("%s %s (%s)", label, subject, detail)
}

// Markdown renders the report as a markdown document with one table row
// per issue.
func Markdown(r Report) string {
	var b strings.Builder
	if r.Result.Success {
		fmt.Fprintf(&b, "# ✅ %s\n\n", r.Schema)
		if r.Source != "" {
			fmt.Fprintf(&b, "`%s` is valid.\n", r.Source)
		} else {
			b.WriteString("The input is valid.\n")
		}
		return b.String()
	}

	fmt.Fprintf(&b, "# ❌ %s\n\n", r.Schema)
	if r.Source != "" {
		fmt.Fprintf(&b, "`%s` has %s.\n\n", r.Source, plural(len(r.Result.Error.Issues), "issue"))
	}
	b.WriteString("| Path | Code | Message |\n|---|---|---|\n")
	for _, issue := range r.Result.Error.Flatten() {
		path := issue.Path.String()
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", escapeCell(path), issue.Code, escapeCell(issue.Message))
	}
	return b.String()
}

// Plain renders the report without markup, for pipes and logs.
func Plain(r Report) string {
	if r.Result.Success {
		return fmt.Sprintf("%s: valid\n", r.Schema)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", r.Schema, plural(len(r.Result.Error.Issues), "issue"))
	for _, issue := range r.Result.Error.Flatten() {
		path := issue.Path.String()
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(&b, "  %s: %s (%s)\n", sanitize(path), sanitize(issue.Message), issue.Code)
	}
	return b.String()
}

// Diff compares the indented JSON of input and output line by line, showing
// stripped keys, applied defaults and transformed values.
func Diff(input, output any) (string, error) {
	a, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode input: %w", err)
	}
	b, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode output: %w", err)
	}

	dmp := diffmatchpatch.New()
	chars1, chars2, lines := dmp.DiffLinesToChars(string(a)+"\n", string(b)+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix + line)
		}
	}
	return out.String(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(sanitize(s), "|", `\|`), "\n", " ")
}

// sanitize strips control characters other than newline and tab. Messages
// quote input values, which must not reach the terminal as escape sequences.
func sanitize(s string) string {
	if !strings.ContainsFunc(s, unsafeControl) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t'
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
