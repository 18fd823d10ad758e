package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-fit/internal/pipeline"
	"github.com/jonathan/resume-fit/internal/schemas"
	"github.com/jonathan/resume-fit/internal/types"
)

var matchProfileCmd = &cobra.Command{
	Use:   "match-profile",
	Short: "Classify each requirement against a candidate profile",
	Long: "Compare a requirement model with a candidate profile and print direct matches, synonym matches, " +
		"gaps with suggestions and a match percentage as JSON.",
	RunE: runMatchProfile,
}

var (
	matchRequirements string
	matchAnalysisID   string
	matchProfile      string
	matchSkills       string
	matchOutput       string
	matchValidate     bool
)

func init() {
	matchProfileCmd.Flags().StringVarP(&matchRequirements, "requirements", "r", "", "Path to requirements JSON (array or analyze-job output)")
	matchProfileCmd.Flags().StringVar(&matchAnalysisID, "analysis-id", "", "Stored analysis to load requirements from (needs a database)")
	matchProfileCmd.Flags().StringVarP(&matchProfile, "profile", "p", "", "Path to candidate profile JSON")
	matchProfileCmd.Flags().StringVarP(&matchSkills, "skills", "s", "", "Comma separated skills, added to the profile's")
	matchProfileCmd.Flags().StringVarP(&matchOutput, "out", "o", "", "Path to output JSON file (default: stdout)")
	matchProfileCmd.Flags().BoolVar(&matchValidate, "validate", false, "Validate the output against the match_result schema")

	rootCmd.AddCommand(matchProfileCmd)
}

func runMatchProfile(cmd *cobra.Command, _ []string) error {
	if matchProfile == "" && matchSkills == "" {
		return fmt.Errorf("either --profile or --skills must be provided")
	}

	req := pipeline.MatchRequest{Skills: splitList(matchSkills)}
	if err := loadRequirementSource(cmd, matchRequirements, matchAnalysisID, &req.AnalysisID, &req.Requirements); err != nil {
		return err
	}
	if matchProfile != "" {
		data, err := readInput(cmd, matchProfile)
		if err != nil {
			return err
		}
		var profile types.Profile
		if err := json.Unmarshal(data, &profile); err != nil {
			return fmt.Errorf("failed to parse profile JSON: %w", err)
		}
		req.Profile = &profile
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cmd, req.AnalysisID != nil)
	if err != nil {
		return err
	}
	defer a.close()

	out, err := a.service.MatchProfileToRequirements(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to match profile: %w", err)
	}
	return writeResult(cmd, matchOutput, out, schemas.MatchResult, matchValidate)
}

// loadRequirementSource fills either the inline requirements or the analysis id
func loadRequirementSource(cmd *cobra.Command, path, analysisID string, id **uuid.UUID, reqs *[]types.Requirement) error {
	switch {
	case path != "" && analysisID != "":
		return fmt.Errorf("--requirements and --analysis-id are mutually exclusive; provide only one")
	case analysisID != "":
		parsed, err := uuid.Parse(analysisID)
		if err != nil {
			return fmt.Errorf("invalid analysis-id: %w", err)
		}
		*id = &parsed
		return nil
	case path != "":
		loaded, err := readRequirements(cmd, path)
		if err != nil {
			return fmt.Errorf("failed to load requirements: %w", err)
		}
		*reqs = loaded
		return nil
	default:
		return fmt.Errorf("either --requirements or --analysis-id must be provided")
	}
}
