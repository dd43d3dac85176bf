package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/contract-review/internal/artifacts"
	"github.com/jonathan/contract-review/internal/ingestion"
	"github.com/jonathan/contract-review/internal/observability"
	"github.com/jonathan/contract-review/internal/pipeline"
	"github.com/jonathan/contract-review/internal/retrieval"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a contract text file for labor-law compliance",
	Long: `Segment a contract, retrieve the relevant legal passages, classify every clause
and write the compliance report JSON. Intermediate artifacts are written under
--artifacts when given.`,
	RunE: runReview,
}

var (
	reviewInputFile   string
	reviewOutputFile  string
	reviewArtifactDir string
	reviewCorpusFile  string
	reviewVerbose     bool
)

func init() {
	reviewCmd.Flags().StringVarP(&reviewInputFile, "in", "i", "", "Path to the contract text file")
	reviewCmd.Flags().StringVarP(&reviewOutputFile, "out", "o", "", "Path to write the report JSON (stdout when omitted)")
	reviewCmd.Flags().StringVar(&reviewArtifactDir, "artifacts", "", "Directory for intermediate artifacts (contract_sections.json, retrieval_output.json, llm_issues.json)")
	reviewCmd.Flags().StringVar(&reviewCorpusFile, "corpus", "", "Legal corpus JSON to search in memory (overrides CORPUS_PATH and VECTOR_DATABASE_URL)")
	reviewCmd.Flags().BoolVarP(&reviewVerbose, "verbose", "v", false, "Print sections, verdicts and report to stderr")

	if err := reviewCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	verbose := reviewVerbose || cfg.Verbose

	text, meta, err := ingestion.ReadContractFile(reviewInputFile)
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

	opts := pipeline.Options{
		Classifier: newClassifier(client, cfg),
		PaceDelay:  cfg.PaceDelay(),
	}

	backend, err := openSearcher(ctx, cfg, client, reviewCorpusFile)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()
	if backend != nil {
		opts.Retriever = retrieval.NewRetriever(backend, cfg.RetryPolicy())
	} else {
		fmt.Fprintln(os.Stderr, "Warning: no legal corpus configured; references will be empty")
	}

	// --artifacts receives the files directly; otherwise each run gets its own directory
	reviewID := ""
	store := artifacts.NewFileStore(reviewArtifactDir)
	if reviewArtifactDir == "" {
		reviewID = uuid.NewString()
		store = artifacts.NewFileStore(cfg.ArtifactDir)
	}
	opts.Store = store

	printer := observability.NewPrinter(os.Stderr)
	if verbose {
		opts.OnProgress = func(ev pipeline.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", ev.Step, ev.Message)
		}
	}

	reviewer, err := pipeline.NewReviewer(opts)
	if err != nil {
		return err
	}

	res, err := reviewer.Review(ctx, pipeline.Input{
		ReviewID: reviewID,
		FileName: filepath.Base(meta.Source),
		Text:     text,
	})
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}
	if res.PersistErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save artifacts: %v\n", res.PersistErr)
	} else {
		fmt.Fprintf(os.Stderr, "Artifacts written to %s\n", filepath.Join(store.Root(), reviewID))
	}

	if verbose {
		printer.PrintSections(res.Sections)
		printer.PrintReferences(res.References)
		printer.PrintVerdicts(res.Verdicts, res.Unresolved)
		printer.PrintReport(res.Payload)
	}

	if err := writeJSON(cmd.OutOrStdout(), reviewOutputFile, res.Payload); err != nil {
		return err
	}
	if reviewOutputFile != "" {
		fmt.Fprintf(os.Stderr, "Reviewed %d clauses (%d problematic, %d unresolved) in %s\n",
			res.Clauses, res.Report.ProblematicCount, len(res.Unresolved), res.Duration.Round(time.Millisecond))
		fmt.Fprintf(os.Stderr, "Report written to %s\n", reviewOutputFile)
	}
	return nil
}
