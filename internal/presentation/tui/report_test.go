package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/sift/pkg/schema"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failing(t *testing.T) Report {
	t.Helper()
	s := schema.Object(
		schema.Field("name", schema.String().Min(2)),
		schema.Field("note", schema.String().Regex(`^a|b$`, "must be a|b")),
	)
	res := s.SafeParse(map[string]any{"name": "A", "note": "c"})
	require.False(t, res.Success)
	return Report{Schema: "user", Source: "user.json", Result: res}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(failing(t))
	assert.Contains(t, md, "# ❌ user")
	assert.Contains(t, md, "`user.json` has 2 issues.")
	assert.Contains(t, md, "| `name` | too_small | String must contain at least 2 character(s) |")
	assert.Contains(t, md, `must be a\|b`)

	ok := Report{Schema: "user", Result: schema.SafeParse(schema.String(), "x")}
	assert.Equal(t, "# ✅ user\n\nThe input is valid.\n", Markdown(ok))
}

func TestPlain(t *testing.T) {
	text := Plain(failing(t))
	assert.True(t, strings.HasPrefix(text, "user: 2 issues\n"))
	assert.Contains(t, text, "  name: String must contain at least 2 character(s) (too_small)\n")
}

func TestStatus(t *testing.T) {
	var buf bytes.Buffer
	out := termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))

	assert.Equal(t, " FAIL  user.json → user (2 issues)", Status(out, failing(t)))

	ok := Report{Schema: "user", Result: schema.SafeParse(schema.String(), "x")}
	assert.Equal(t, " PASS  user (valid)", Status(out, ok))
}

func TestDiff(t *testing.T) {
	s := schema.Object(
		schema.Field("name", schema.String()),
		schema.Field("role", schema.String().Default("user")),
	)
	input := map[string]any{"name": "Ada", "extra": true}
	res := s.SafeParse(input)
	require.True(t, res.Success)

	diff, err := Diff(input, res.Data)
	require.NoError(t, err)
	assert.Contains(t, diff, "-   \"extra\": true,\n")
	assert.Contains(t, diff, "+   \"role\": \"user\"\n")
	assert.Contains(t, diff, "  {\n")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/_|_|")
}

func TestSanitize(t *testing.T) {
	res := schema.Enum("a", "b").SafeParse("\x1b[31mred\x1b[0m")
	require.False(t, res.Success)

	text := Plain(Report{Schema: "color", Result: res})
	assert.NotContains(t, text, "\x1b")
	assert.Contains(t, text, "[31mred[0m")
	assert.Equal(t, "tab\tand\nnewline", sanitize("tab\tand\nnewline\x00"))
}
