package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-fit/internal/ingestion"
	"github.com/jonathan/resume-fit/internal/pipeline"
	"github.com/jonathan/resume-fit/internal/schemas"
	"github.com/jonathan/resume-fit/internal/scoring"
	"github.com/jonathan/resume-fit/internal/types"
)

var scoreDocumentCmd = &cobra.Command{
	Use:   "score-document",
	Short: "Score a rendered resume for automated screening and recruiter review",
	Long: "Score a plain text, markdown or HTML resume against a requirement model and print the ATS score, " +
		"the recruiter score, their breakdowns, missing keywords and recommendations as JSON. " +
		"Repeat --in to score several renderings concurrently; the output is then an array in input order.",
	RunE: runScoreDocument,
}

var (
	scoreInputs       []string
	scoreHTML         bool
	scoreRequirements string
	scoreAnalysisID   string
	scoreOutput       string
	scoreValidate     bool
)

func init() {
	scoreDocumentCmd.Flags().StringArrayVarP(&scoreInputs, "in", "i", nil, "Path to a rendered document (- for stdin); repeatable")
	scoreDocumentCmd.Flags().BoolVar(&scoreHTML, "html", false, "Treat the input as HTML")
	scoreDocumentCmd.Flags().StringVarP(&scoreRequirements, "requirements", "r", "", "Path to requirements JSON (array or analyze-job output)")
	scoreDocumentCmd.Flags().StringVar(&scoreAnalysisID, "analysis-id", "", "Stored analysis to load requirements from (needs a database)")
	scoreDocumentCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Path to output JSON file (default: stdout)")
	scoreDocumentCmd.Flags().BoolVar(&scoreValidate, "validate", false, "Validate the output against the score_result schema")

	scoreDocumentCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(scoreDocumentCmd)
}

func runScoreDocument(cmd *cobra.Command, _ []string) error {
	var analysisID *uuid.UUID
	var reqs []types.Requirement
	if err := loadRequirementSource(cmd, scoreRequirements, scoreAnalysisID, &analysisID, &reqs); err != nil {
		return err
	}

	stdin := 0
	for _, path := range scoreInputs {
		if path == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return fmt.Errorf("standard input (-) can be given to --in only once")
	}

	docs := make([]scoring.Document, 0, len(scoreInputs))
	for _, path := range scoreInputs {
		doc, err := readDocument(cmd, path, scoreHTML)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cmd, analysisID != nil)
	if err != nil {
		return err
	}
	defer a.close()

	if len(docs) == 1 {
		out, err := a.service.ScoreDocument(ctx, pipeline.ScoreRequest{AnalysisID: analysisID, Requirements: reqs, Document: docs[0]})
		if err != nil {
			return fmt.Errorf("failed to score document: %w", err)
		}
		return writeResult(cmd, scoreOutput, out, schemas.ScoreResult, scoreValidate)
	}

	results, err := a.service.ScoreBatch(ctx, pipeline.ScoreBatchRequest{AnalysisID: analysisID, Requirements: reqs, Documents: docs})
	if err != nil {
		return fmt.Errorf("failed to score documents: %w", err)
	}
	if scoreValidate {
		for i, r := range results {
			if err := schemas.ValidateValue(schemas.ScoreResult, r); err != nil {
				return fmt.Errorf("result %d (%s) does not validate against schema: %w", i, scoreInputs[i], err)
			}
		}
	}
	return writeResult(cmd, scoreOutput, results, schemas.ScoreResult, false)
}

// readDocument loads one rendering, parsing HTML when asHTML is set
func readDocument(cmd *cobra.Command, path string, asHTML bool) (scoring.Document, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return scoring.Document{}, err
	}
	if asHTML {
		return ingestion.ParseDocumentHTML(string(data))
	}
	text := ingestion.CleanText(string(data))
	return scoring.Document{PlainText: text, Bullets: ingestion.ExtractBullets(text)}, nil
}
