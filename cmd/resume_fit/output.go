package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-fit/internal/schemas"
)

// writeResult writes v as indented JSON to path, or to stdout when path is
// empty. With validate set, the artifact is first checked against the named
// embedded schema.
func writeResult(cmd *cobra.Command, path string, v any, schema string, validate bool) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if validate {
		if err := schemas.Validate(schema, jsonBytes); err != nil {
			var validationErr *schemas.ValidationError
			if errors.As(err, &validationErr) {
				return fmt.Errorf("generated JSON does not validate against schema: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Could not validate output against schema: %v\n", err)
		}
	}

	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		return err
	}
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Output: %s\n", path)
	return nil
}
