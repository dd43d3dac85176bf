package main

import (
	"fmt"
	"strings"

	"github.com/jonathan/contract-review/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON artifact against its schema",
	RunE:  runValidate,
}

var (
	validateSchema    string
	validateInputFile string
)

func init() {
	names := make([]string, 0, len(schemas.Kinds()))
	for _, k := range schemas.Kinds() {
		names = append(names, string(k))
	}

	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Schema name ("+strings.Join(names, ", ")+")")
	validateCmd.Flags().StringVarP(&validateInputFile, "in", "i", "", "Path to the JSON file to validate")

	if err := validateCmd.MarkFlagRequired("schema"); err != nil {
		panic(fmt.Sprintf("failed to mark schema flag as required: %v", err))
	}
	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	kind, err := schemas.ParseKind(validateSchema)
	if err != nil {
		return err
	}
	if err := schemas.ValidateFile(kind, validateInputFile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid %s document\n", validateInputFile, kind)
	return nil
}
