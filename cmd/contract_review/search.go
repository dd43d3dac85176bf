package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/contract-review/internal/observability"
	"github.com/jonathan/contract-review/internal/retrieval"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the legal corpus for the passages nearest a query",
	RunE:  runSearch,
}

var (
	searchQuery      string
	searchLimit      int
	searchCorpusFile string
	searchJSON       bool
)

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Text to search for")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "k", retrieval.DefaultSearchLimit, "Number of passages to return")
	searchCmd.Flags().StringVar(&searchCorpusFile, "corpus", "", "Legal corpus JSON to search in memory (overrides CORPUS_PATH and VECTOR_DATABASE_URL)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print hits as JSON")

	if err := searchCmd.MarkFlagRequired("query"); err != nil {
		panic(fmt.Sprintf("failed to mark query flag as required: %v", err))
	}

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	query := strings.TrimSpace(searchQuery)
	if query == "" {
		return fmt.Errorf("--query must not be empty")
	}
	if searchLimit <= 0 {
		return fmt.Errorf("-k must be positive, got %d", searchLimit)
	}

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	backend, err := openSearcher(ctx, cfg, client, searchCorpusFile)
	if err != nil {
		return err
	}
	if backend == nil {
		return fmt.Errorf("no legal corpus configured: pass --corpus or set CORPUS_PATH or VECTOR_DATABASE_URL")
	}
	defer func() { _ = backend.Close() }()

	hits, err := backend.Search(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return writeJSON(cmd.OutOrStdout(), "", hits)
	}
	observability.NewPrinter(os.Stdout).PrintHits(query, hits)
	return nil
}
