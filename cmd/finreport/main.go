package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/finreport/internal/config"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	dataDir string

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "finreport",
	Short: "finreport - equity research report generator",
	Long: `finreport turns a pile of company documents into an equity research
report. Source documents are converted to markdown, merged into a
master corpus, and fed through a phased LLM generation pipeline.

Typical flow:
  finreport convert --company acme docs/*.pdf
  finreport merge --company acme
  finreport report company_data/acme/acme_master_20250314_093000.md

Or end to end:
  finreport run --company acme docs/*.pdf`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		out := io.Writer(os.Stderr)
		opts := &slog.HandlerOptions{}
		if verbose {
			opts.Level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(out, opts))
	},
}

func loadConfig() config.Config {
	cfg := config.Load()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "company data directory (default \"company_data\")")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
