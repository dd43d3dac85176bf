package prompts

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("compliance.json", "classify-clause")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.ClauseText}}")
	assert.Contains(t, prompt, "{{.ClauseIndex}}")
	assert.Contains(t, prompt, `{"compliant": true}`)
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("compliance.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	result := Format("Clause {{.Index}}: {{.Text}}", map[string]string{
		"Index": "3",
		"Text":  "préavis de deux mois",
	})
	assert.Equal(t, "Clause 3: préavis de deux mois", result)
}

func TestFormat_ValueContainingPlaceholder(t *testing.T) {
	result := Format("{{.A}} {{.B}}", map[string]string{
		"A": "{{.B}}",
		"B": "b",
	})
	assert.Equal(t, "{{.B}} b", result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	assert.Equal(t, template, Format(template, nil))
}

func TestRender(t *testing.T) {
	ClearCache()

	out, err := Render("compliance.json", "classify-clause", map[string]string{
		"ClauseIndex":     "4",
		"ClauseText":      "La période d'essai est de six mois.",
		"IssueLimit":      "120",
		"SuggestionLimit": "150",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "CLAUSE (index 4)")
	assert.Contains(t, out, "La période d'essai est de six mois.")
	assert.NotContains(t, out, "{{.")
}

func TestRender_MissingPlaceholder(t *testing.T) {
	ClearCache()

	_, err := Render("compliance.json", "classify-clause", map[string]string{"ClauseIndex": "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{.ClauseText}}")
}

func TestRender_ValueContainingPlaceholder(t *testing.T) {
	ClearCache()

	clauseText := "Le salarié percevra une prime de {{.Prime}} dirhams par trimestre."
	out, err := Render("compliance.json", "classify-clause", map[string]string{
		"ClauseIndex":     "2",
		"ClauseText":      clauseText,
		"IssueLimit":      "120",
		"SuggestionLimit": "150",
	})
	require.NoError(t, err)
	assert.Contains(t, out, clauseText)
}

func TestLibrary_RenderReportsEachMissingKeyOnce(t *testing.T) {
	lib := NewLibrary(fstest.MapFS{
		"review.json": {Data: []byte(`{"p": "{{.A}} {{.B}} {{.A}}"}`)},
	})

	_, err := lib.Render("review.json", "p", map[string]string{"B": "{{.A}}"})
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(err.Error(), "{{.A}}"))
	assert.NotContains(t, err.Error(), "{{.B}}")
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("compliance.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"classify-clause"}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("compliance.json", "classify-clause")
	require.NoError(t, err)

	prompt2, err := Get("compliance.json", "classify-clause")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}

func TestLibrary_CustomFS(t *testing.T) {
	lib := NewLibrary(fstest.MapFS{
		"review.json": {Data: []byte(`{"b": "second {{.X}}", "a": "first"}`)},
		"broken.json": {Data: []byte(`{not json`)},
	})

	keys, err := lib.Keys("review.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	out, err := lib.Render("review.json", "b", map[string]string{"X": "clause"})
	require.NoError(t, err)
	assert.Equal(t, "second clause", out)

	_, err = lib.Get("broken.json", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse prompt file")
}
