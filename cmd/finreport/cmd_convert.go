package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/finreport/internal/convert"
	"github.com/dgallion1/finreport/internal/master"
	"github.com/spf13/cobra"
)

var convertCompany string

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert source documents to markdown",
	Long: `Converts each source document (txt, md, csv, html, pdf, docx) to
markdown and writes it to the company's processed directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge processed documents into a master corpus file",
	Args:  cobra.NoArgs,
	RunE:  runMerge,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies and their document counts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	convertCmd.Flags().StringVarP(&convertCompany, "company", "c", "", "company name (required)")
	convertCmd.MarkFlagRequired("company")
	mergeCmd.Flags().StringVarP(&convertCompany, "company", "c", "", "company name (required)")
	mergeCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(convertCmd, mergeCmd, listCmd)
}

func processedDir(dataDir, company string) string {
	return filepath.Join(dataDir, company, "processed")
}

// convertFiles converts each source document and writes the markdown
// into the company's processed directory, returning the written paths.
func convertFiles(dataDir, company string, paths []string) ([]string, error) {
	outDir := processedDir(dataDir, company)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", outDir, err)
	}

	var written []string
	for _, path := range paths {
		if !convert.IsSupportedExtension(path) {
			logger.Warn("skipping unsupported file", "file", path)
			continue
		}
		res, err := convert.File(path)
		if err != nil {
			logger.Error("conversion failed", "file", path, "error", err)
			continue
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".md"
		outPath := filepath.Join(outDir, base)
		if err := os.WriteFile(outPath, []byte(res.Markdown), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", outPath, err)
		}
		logger.Info("converted", "file", path, "output", outPath)
		written = append(written, outPath)
	}
	if len(written) == 0 {
		return nil, fmt.Errorf("no documents converted")
	}
	return written, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	written, err := convertFiles(cfg.DataDir, convertCompany, args)
	if err != nil {
		return err
	}
	fmt.Printf("Converted %d document(s) into %s\n", len(written), processedDir(cfg.DataDir, convertCompany))
	return nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	files, err := filepath.Glob(filepath.Join(processedDir(cfg.DataDir, convertCompany), "*.md"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	outPath, err := master.GenerateFile(convertCompany, files, "", time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Master file written to %s\n", outPath)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	entries, err := os.ReadDir(cfg.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No data directory at %s\n", cfg.DataDir)
			return nil
		}
		return err
	}

	found := false
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		company := e.Name()
		processed, _ := filepath.Glob(filepath.Join(processedDir(cfg.DataDir, company), "*.md"))
		masters, _ := filepath.Glob(filepath.Join(cfg.DataDir, company, company+"_master_*.md"))
		reports, _ := filepath.Glob(filepath.Join(cfg.DataDir, company, "reports", "*.md"))
		fmt.Printf("%s: %d processed, %d master, %d report(s)\n", company, len(processed), len(masters), len(reports))
		found = true
	}
	if !found {
		fmt.Printf("No companies under %s\n", cfg.DataDir)
	}
	return nil
}
