package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/contract-review/internal/corpus"
	"github.com/jonathan/contract-review/internal/retrieval"
	"github.com/spf13/cobra"
)

var indexCorpusCmd = &cobra.Command{
	Use:   "index-corpus",
	Short: "Embed reference sections and store them in the vector database",
	Long:  "Embed a JSON array of {title, text} reference sections and insert them into the pgvector table at VECTOR_DATABASE_URL. Passages already stored are skipped.",
	RunE:  runIndexCorpus,
}

var (
	indexInputFile  string
	indexDimensions int
)

func init() {
	indexCorpusCmd.Flags().StringVarP(&indexInputFile, "in", "i", "", "Path to the reference sections JSON")
	indexCorpusCmd.Flags().IntVar(&indexDimensions, "dimensions", retrieval.DefaultDimensions, "Embedding vector size used when creating the table")

	if err := indexCorpusCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(indexCorpusCmd)
}

func runIndexCorpus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	if cfg.VectorDatabaseURL == "" {
		return fmt.Errorf("VECTOR_DATABASE_URL is required to index the corpus")
	}

	entries, err := corpus.LoadEntries(indexInputFile)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no reference sections in %s", indexInputFile)
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

	store, err := retrieval.OpenPostgresSearcher(cfg.VectorDatabaseURL, client)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.EnsureSchema(ctx, indexDimensions); err != nil {
		return err
	}

	inserted, err := store.Index(ctx, entries)
	if err != nil {
		return fmt.Errorf("failed to index corpus: %w", err)
	}
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Indexed %d new sections (%d skipped, %d stored)\n", inserted, len(entries)-inserted, total)
	return nil
}
