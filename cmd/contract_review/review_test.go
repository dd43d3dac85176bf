package main

import (
	"path/filepath"
	"testing"

	"github.com/jonathan/contract-review/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewCommand_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("CORPUS_PATH", "")

	_, err := executeCommand(t, "review", "--in", filepath.Join("testdata", "contract.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestSearchCommand_Validation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{name: "blank query", args: []string{"search", "--query", "   ", "-k", "3"}, errorString: "must not be empty"},
		{name: "non-positive k", args: []string{"search", "--query", "préavis", "-k", "0"}, errorString: "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestIndexCorpusCommand_RequiresVectorDatabase(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("VECTOR_DATABASE_URL", "")
	t.Setenv("CORPUS_PATH", "")

	_, err := executeCommand(t, "index-corpus", "--in", filepath.Join("testdata", "labor_code.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VECTOR_DATABASE_URL")
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, allowedOrigins())

	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	assert.Empty(t, allowedOrigins())
}
