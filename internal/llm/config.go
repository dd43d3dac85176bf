// Package llm provides the language model client used for clause classification
// and the embedding client used for legal-corpus retrieval.
package llm

import "time"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Default model names
const (
	DefaultGenerationModel = "gemini-1.5-flash"
	DefaultEmbeddingModel  = "text-embedding-004"
	DefaultTemperature     = 0.1
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	// GenerationModel answers compliance prompts
	GenerationModel string
	// EmbeddingModel embeds clauses and legal passages
	EmbeddingModel string
	Temperature    float32
	// JSONOutput asks the provider for a JSON response body
	JSONOutput bool
	// Timeout bounds a single provider call. Zero means no extra timeout.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderGemini,
		GenerationModel: DefaultGenerationModel,
		EmbeddingModel:  DefaultEmbeddingModel,
		Temperature:     DefaultTemperature,
		JSONOutput:      true,
		Timeout:         60 * time.Second,
	}
}

// WithGenerationModel returns a copy of c using model for generation
func (c *Config) WithGenerationModel(model string) *Config {
	next := *c
	if model != "" {
		next.GenerationModel = model
	}
	return &next
}

// WithEmbeddingModel returns a copy of c using model for embeddings
func (c *Config) WithEmbeddingModel(model string) *Config {
	next := *c
	if model != "" {
		next.EmbeddingModel = model
	}
	return &next
}
