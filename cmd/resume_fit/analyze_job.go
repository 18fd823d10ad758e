package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/ingestion"
	"github.com/jonathan/resume-fit/internal/schemas"
)

var analyzeJobCmd = &cobra.Command{
	Use:   "analyze-job",
	Short: "Extract a weighted requirement model from a job posting",
	Long: "Read a job posting from a text file, an HTML file or a URL and print its requirements, " +
		"responsibilities and experience level as JSON.",
	RunE: runAnalyzeJob,
}

var (
	analyzeInput    string
	analyzeURL      string
	analyzeTitle    string
	analyzeHTML     bool
	analyzeOutput   string
	analyzeValidate bool
	analyzeSave     bool
	analyzeBrowser  bool
)

func init() {
	analyzeJobCmd.Flags().StringVarP(&analyzeInput, "in", "i", "", "Path to job posting file (- for stdin)")
	analyzeJobCmd.Flags().StringVarP(&analyzeURL, "url", "u", "", "URL to fetch job posting from")
	analyzeJobCmd.Flags().StringVarP(&analyzeTitle, "title", "t", "", "Job title (default: first line or page heading)")
	analyzeJobCmd.Flags().BoolVar(&analyzeHTML, "html", false, "Treat the input file as HTML")
	analyzeJobCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Path to output JSON file (default: stdout)")
	analyzeJobCmd.Flags().BoolVar(&analyzeValidate, "validate", false, "Validate the output against the job_analysis schema")
	analyzeJobCmd.Flags().BoolVar(&analyzeBrowser, "use-browser", false, "Render thin pages in headless Chrome (needs Chrome or Chromium)")
	analyzeJobCmd.Flags().BoolVar(&analyzeSave, "save", false, "Persist the analysis when a database is configured")

	rootCmd.AddCommand(analyzeJobCmd)
}

func runAnalyzeJob(cmd *cobra.Command, _ []string) error {
	if analyzeInput == "" && analyzeURL == "" {
		return fmt.Errorf("either --in or --url must be provided")
	}
	if analyzeInput != "" && analyzeURL != "" {
		return fmt.Errorf("--in and --url are mutually exclusive; provide only one")
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cmd, analyzeSave)
	if err != nil {
		return err
	}
	defer a.close()

	title, body := strings.TrimSpace(analyzeTitle), ""
	var parsedTitle string
	switch {
	case analyzeURL != "":
		var opts []ingestion.FetchOption
		if a.cfg.UseBrowser {
			opts = append(opts, ingestion.WithRenderer(ingestion.ChromeRenderer(a.cfg.FetchTimeout)))
		}
		posting, err := ingestion.FetchPosting(ctx, &http.Client{Timeout: a.cfg.FetchTimeout}, analyzeURL, opts...)
		if err != nil {
			return fmt.Errorf("failed to ingest from URL: %w", err)
		}
		parsedTitle, body = posting.Title, posting.Body

	case analyzeHTML:
		data, err := readInput(cmd, analyzeInput)
		if err != nil {
			return err
		}
		if parsedTitle, body, err = ingestion.ParseJobHTML(string(data)); err != nil {
			return err
		}

	default:
		data, err := readInput(cmd, analyzeInput)
		if err != nil {
			return err
		}
		body = ingestion.CleanText(string(data))
		if title == "" {
			parsedTitle, body = ingestion.SplitTitle(body)
		}
	}
	if title == "" {
		title = parsedTitle
	}
	meta := ingestion.NewMetadata(title, body, analyzeURL)
	a.logger.Debug("ingested posting",
		zap.String("url", meta.URL),
		zap.String("posting_hash", meta.Hash),
		zap.Int("chars", len(body)))

	out, err := a.service.AnalyzeJobPosting(ctx, title, body)
	if err != nil {
		return fmt.Errorf("failed to analyze job posting: %w", err)
	}
	if out.ID != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Saved analysis %s\n", out.ID)
	}
	return writeResult(cmd, analyzeOutput, out, schemas.JobAnalysis, analyzeValidate)
}
