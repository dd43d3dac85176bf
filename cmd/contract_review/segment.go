package main

import (
	"fmt"
	"os"

	"github.com/jonathan/contract-review/internal/ingestion"
	"github.com/jonathan/contract-review/internal/schemas"
	"github.com/jonathan/contract-review/internal/segmenting"
	"github.com/jonathan/contract-review/internal/types"
	"github.com/spf13/cobra"
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Split a contract text file into titled sections",
	Long:  "Normalize a contract text file and split it into sections on all-caps headings. No model calls are made.",
	RunE:  runSegment,
}

var (
	segmentInputFile  string
	segmentOutputFile string
)

func init() {
	segmentCmd.Flags().StringVarP(&segmentInputFile, "in", "i", "", "Path to the contract text file")
	segmentCmd.Flags().StringVarP(&segmentOutputFile, "out", "o", "", "Path to write the sections JSON (stdout when omitted)")

	if err := segmentCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, _ []string) error {
	text, _, err := ingestion.ReadContractFile(segmentInputFile)
	if err != nil {
		return err
	}

	sections := types.ContractSections(segmenting.Segment(text))
	if err := schemas.ValidateValue(schemas.KindSections, sections); err != nil {
		return fmt.Errorf("sections failed validation: %w", err)
	}

	if err := writeJSON(cmd.OutOrStdout(), segmentOutputFile, sections); err != nil {
		return err
	}
	if segmentOutputFile != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d sections (%d clauses) to %s\n", len(sections), len(sections.Clauses()), segmentOutputFile)
	}
	return nil
}
