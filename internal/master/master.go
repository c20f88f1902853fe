// Package master consolidates converted documents into the single
// corpus the report pipeline feeds on.
package master

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Document is one converted source ready for consolidation.
type Document struct {
	Name     string // document stem, used for TOC entries and headings
	Source   string // original filename, listed in the sources table
	Content  string // markdown body
	Modified time.Time
}

// category buckets documents by content keywords, mirroring how the
// corpus is organized for the downstream keyword router.
type category struct {
	name     string
	keywords []string
}

var categories = []category{
	{"Financial Data", []string{"profit", "revenue", "financial", "balance sheet", "income", "statement", "ratio"}},
	{"Business Overview", []string{"business", "product", "service", "segment", "overview"}},
	{"Management", []string{"ceo", "director", "management", "board"}},
	{"Industry Analysis", []string{"industry", "market", "competitor", "competition"}},
	{"News & Media", []string{"news", "press", "announcement", "media"}},
	{"Miscellaneous", nil},
}

// Build assembles the master corpus: title block, table of contents,
// documents grouped under category headings, and a sources table.
func Build(company string, docs []Document, now time.Time) string {
	parts := []string{
		fmt.Sprintf("# %s - Consolidated Analysis", strings.ToUpper(company)),
		fmt.Sprintf("Generated on: %s", now.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Number of source documents: %d", len(docs)),
		"---",
	}

	toc := []string{"## Table of Contents"}
	for _, d := range docs {
		toc = append(toc, fmt.Sprintf("- [%s](#%s)", d.Name, anchor(d.Name)))
	}
	parts = append(parts, strings.Join(toc, "\n"))
	parts = append(parts, "---")

	grouped := make(map[string][]Document)
	for _, d := range docs {
		c := categorize(d.Content)
		grouped[c] = append(grouped[c], d)
	}

	for _, c := range categories {
		members := grouped[c.name]
		if len(members) == 0 {
			continue
		}
		parts = append(parts, "# "+c.name)
		for _, d := range members {
			parts = append(parts, fmt.Sprintf("<a id=%q></a>", anchor(d.Name)))
			parts = append(parts, "## "+d.Name)
			parts = append(parts, stripDuplicateTitle(d.Content, d.Name))
			parts = append(parts, "---")
		}
	}

	meta := []string{
		"# Metadata",
		"",
		"## Document Sources",
		"",
		"| Source | Type | Date Included |",
		"| --- | --- | --- |",
	}
	for _, d := range docs {
		meta = append(meta, fmt.Sprintf("| %s | %s | %s |", d.Name, filepath.Ext(d.Source), d.Modified.Format("2006-01-02")))
	}
	parts = append(parts, strings.Join(meta, "\n"))

	return strings.Join(parts, "\n\n") + "\n"
}

// GenerateFile builds the master corpus from markdown files on disk and
// writes it next to them (or into outputDir when given). It returns the
// written path.
func GenerateFile(company string, files []string, outputDir string, now time.Time) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("no processed documents for %s", company)
	}
	if outputDir == "" {
		// Go up one level from processed/.
		outputDir = filepath.Dir(filepath.Dir(files[0]))
	}

	docs := make([]Document, 0, len(files))
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		modified := now
		if info, err := os.Stat(path); err == nil {
			modified = info.ModTime()
		}
		docs = append(docs, Document{
			Name:     name,
			Source:   filepath.Base(path),
			Content:  string(content),
			Modified: modified,
		})
	}

	outPath := filepath.Join(outputDir, fmt.Sprintf("%s_master_%s.md", company, now.Format("20060102_150405")))
	if err := os.WriteFile(outPath, []byte(Build(company, docs, now)), 0o644); err != nil {
		return "", fmt.Errorf("write master file: %w", err)
	}
	return outPath, nil
}

func categorize(content string) string {
	lower := strings.ToLower(content)
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.name
			}
		}
	}
	return "Miscellaneous"
}

func anchor(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// stripDuplicateTitle drops a leading level-1 heading that repeats the
// document name, since the document gets its own heading in the corpus.
func stripDuplicateTitle(content, name string) string {
	first, rest, found := strings.Cut(content, "\n")
	if strings.HasPrefix(first, "# ") && strings.Contains(first, name) {
		if !found {
			return ""
		}
		return strings.TrimLeft(rest, "\n")
	}
	return content
}
