// Package main provides the resume_fit command line: job posting analysis,
// profile matching, document scoring and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "resume_fit",
	Short: "Resume and job posting fit analysis",
	Long: "resume_fit extracts weighted requirements from job postings, matches candidate profiles against them " +
		"and scores rendered resumes for automated screening and recruiter review.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is resume-fit.yaml in the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&logJSON, "log-json", "j", false, "json format for logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
