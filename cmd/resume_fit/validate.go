package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-fit/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a saved JSON artifact against its schema",
	Long: "Validate the JSON written by analyze-job, match-profile or score-document. --schema takes an embedded schema name (" +
		strings.Join(schemas.Names(), ", ") + ") or the path to a JSON Schema file.",
	RunE: runValidate,
}

var (
	validateSchema string
	validateJSON   string
)

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Embedded schema name or path to a JSON Schema file (required)")
	validateCmd.Flags().StringVar(&validateJSON, "json", "", "Path to the JSON file to validate (required)")

	validateCmd.MarkFlagRequired("schema")
	validateCmd.MarkFlagRequired("json")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	if err := schemas.ValidateJSON(validateSchema, validateJSON); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s\n", validateJSON)
	return err
}
