package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/contract-review/internal/compliance"
	"github.com/jonathan/contract-review/internal/config"
	"github.com/jonathan/contract-review/internal/corpus"
	"github.com/jonathan/contract-review/internal/llm"
	"github.com/jonathan/contract-review/internal/retrieval"
)

// loadConfig reads --config, overlays the environment and requires an API key when asked
func loadConfig(needsAPIKey bool) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if needsAPIKey {
		if err := cfg.RequireAPIKey(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// newClient creates the Gemini client for generation and embeddings
func newClient(ctx context.Context, cfg config.Config) (*llm.GeminiClient, error) {
	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// newClassifier uses the configured retry policy for model calls
func newClassifier(client llm.Client, cfg config.Config) *compliance.Classifier {
	opts := compliance.DefaultOptions()
	opts.Retry = cfg.RetryPolicy()
	return compliance.New(client, opts)
}

// searchBackend is a searcher plus whatever must be released after use
type searchBackend struct {
	retrieval.Searcher
	close func() error
}

func (b *searchBackend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// openSearcher picks the legal-corpus backend: an explicit corpus file is
// embedded in memory, otherwise the pgvector database is used. It returns
// nil when neither is configured.
func openSearcher(ctx context.Context, cfg config.Config, embedder llm.Embedder, corpusPath string) (*searchBackend, error) {
	if corpusPath == "" {
		corpusPath = cfg.CorpusPath
	}

	if corpusPath != "" {
		entries, err := corpus.LoadEntries(corpusPath)
		if err != nil {
			return nil, err
		}
		mem, err := retrieval.NewMemorySearcher(ctx, embedder, entries)
		if err != nil {
			return nil, err
		}
		return &searchBackend{Searcher: mem}, nil
	}

	if cfg.VectorDatabaseURL != "" {
		pg, err := retrieval.OpenPostgresSearcher(cfg.VectorDatabaseURL, embedder)
		if err != nil {
			return nil, err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("failed to reach vector database: %w", err)
		}
		return &searchBackend{Searcher: pg, close: pg.Close}, nil
	}

	return nil, nil
}

// writeJSON writes v as indented JSON to path, or to out when path is empty
func writeJSON(out io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
