package main

import (
	"fmt"
	"os"

	"github.com/jonathan/contract-review/internal/corpus"
	"github.com/spf13/cobra"
)

var splitCorpusCmd = &cobra.Command{
	Use:   "split-corpus",
	Short: "Split extracted labor-code text into titled reference sections",
	Long: `Clean the text extracted from the labor code (page markers, hyphenated line
breaks) and split it on numbered major headings into a JSON array of
{"title", "text"} entries usable with --corpus or index-corpus.`,
	RunE: runSplitCorpus,
}

var (
	splitInputFile  string
	splitOutputFile string
)

func init() {
	splitCorpusCmd.Flags().StringVarP(&splitInputFile, "in", "i", "", "Path to the extracted labor-code text")
	splitCorpusCmd.Flags().StringVarP(&splitOutputFile, "out", "o", "", "Path to write the sections JSON (stdout when omitted)")

	if err := splitCorpusCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(splitCorpusCmd)
}

func runSplitCorpus(cmd *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(splitInputFile)
	if err != nil {
		return fmt.Errorf("failed to read corpus text: %w", err)
	}

	entries := corpus.SplitSections(corpus.CleanLegalText(string(raw)))
	if len(entries) == 0 {
		return fmt.Errorf("no numbered headings found in %s", splitInputFile)
	}

	if err := writeJSON(cmd.OutOrStdout(), splitOutputFile, entries); err != nil {
		return err
	}
	if splitOutputFile != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d reference sections to %s\n", len(entries), splitOutputFile)
	}
	return nil
}
