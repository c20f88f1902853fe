package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/finreport/internal/config"
	"github.com/dgallion1/finreport/internal/llm"
	"github.com/dgallion1/finreport/internal/master"
	"github.com/dgallion1/finreport/internal/report"
	"github.com/dgallion1/finreport/internal/template"
	"github.com/spf13/cobra"
)

var (
	reportTemplate  string
	reportPhases    string
	reportModel     string
	reportOutputDir string
	runCompany      string
)

var reportCmd = &cobra.Command{
	Use:   "report [master-file]",
	Short: "Generate an equity research report from a master corpus file",
	Long: `Generates the phased report from a master corpus file. The company
name is derived from the master filename (everything before "_master_").`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var runCmd = &cobra.Command{
	Use:   "run [files...]",
	Short: "Convert, merge, and generate in one pass",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAll,
}

func init() {
	for _, c := range []*cobra.Command{reportCmd, runCmd} {
		c.Flags().StringVar(&reportTemplate, "template", "", "prompt template file (markdown)")
		c.Flags().StringVar(&reportPhases, "phases", "", "phase table override (yaml)")
		c.Flags().StringVar(&reportModel, "model", "", "model name override")
		c.Flags().StringVarP(&reportOutputDir, "output-dir", "o", "", "report output directory")
	}
	runCmd.Flags().StringVarP(&runCompany, "company", "c", "", "company name (required)")
	runCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(reportCmd, runCmd)
}

// companyFromMaster derives the company name from a master filename
// like acme_master_20250314_093000.md.
func companyFromMaster(path string) (string, error) {
	base := filepath.Base(path)
	company, _, found := strings.Cut(base, "_master_")
	if !found || company == "" {
		return "", fmt.Errorf("cannot derive company from filename %s (expected <company>_master_<timestamp>.md)", base)
	}
	return company, nil
}

func buildClient(cfg config.Config) (llm.Client, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	model := cfg.Model
	if reportModel != "" {
		model = reportModel
	}
	return llm.NewOpenAIClient(cfg.OpenAIAPIKey, model, cfg.OpenAIBaseURL, llm.NewStats(0)), nil
}

func loadTemplate(cfg config.Config) (template.Template, error) {
	path := cfg.TemplatePath
	if reportTemplate != "" {
		path = reportTemplate
	}
	if path == "" {
		return template.Default(), nil
	}
	return template.Load(path)
}

func loadPhaseTable(cfg config.Config) ([]report.PhaseSpec, error) {
	path := cfg.PhasesPath
	if reportPhases != "" {
		path = reportPhases
	}
	if path == "" {
		return report.DefaultPhases(), nil
	}
	return report.LoadPhases(path)
}

// generateReport runs the full phase pipeline over a corpus and writes
// the assembled document, returning its path.
func generateReport(cfg config.Config, company, corpus string, sources []string) (string, error) {
	client, err := buildClient(cfg)
	if err != nil {
		return "", err
	}
	tmpl, err := loadTemplate(cfg)
	if err != nil {
		return "", err
	}
	phases, err := loadPhaseTable(cfg)
	if err != nil {
		return "", err
	}

	gen := report.NewGenerator(client, logger, report.Options{
		DigestChunkTokens: cfg.DigestChunkTokens,
		DigestMaxTokens:   cfg.DigestMaxTokens,
		DigestTemperature: cfg.DigestTemperature,
		DigestConcurrency: cfg.DigestConcurrency,
	})

	rep := gen.Generate(context.Background(), company, corpus, tmpl, phases, sources)
	if failed := rep.Failed(); failed > 0 {
		logger.Warn("some phases failed", "failed", failed, "total", len(rep.Results))
	}

	outDir := reportOutputDir
	if outDir == "" {
		outDir = filepath.Join(cfg.DataDir, company, "reports")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", outDir, err)
	}
	outPath := filepath.Join(outDir, fmt.Sprintf("%s_equity_research_%s.md", company, rep.GeneratedAt.Format("20060102_150405")))
	if err := os.WriteFile(outPath, []byte(report.Assemble(rep)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return outPath, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	masterPath := args[0]

	company, err := companyFromMaster(masterPath)
	if err != nil {
		return err
	}
	corpus, err := os.ReadFile(masterPath)
	if err != nil {
		return fmt.Errorf("read master file: %w", err)
	}

	outPath, err := generateReport(cfg, company, string(corpus), []string{filepath.Base(masterPath)})
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", outPath)
	return nil
}

func runAll(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	written, err := convertFiles(cfg.DataDir, runCompany, args)
	if err != nil {
		return err
	}
	sort.Strings(written)

	masterPath, err := master.GenerateFile(runCompany, written, "", time.Now())
	if err != nil {
		return err
	}
	logger.Info("master corpus written", "path", masterPath)

	corpus, err := os.ReadFile(masterPath)
	if err != nil {
		return fmt.Errorf("read master file: %w", err)
	}
	sources := make([]string, 0, len(args))
	for _, a := range args {
		sources = append(sources, filepath.Base(a))
	}

	outPath, err := generateReport(cfg, runCompany, string(corpus), sources)
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", outPath)
	return nil
}
