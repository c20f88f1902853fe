package master

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func testDocs() []Document {
	return []Document{
		{
			Name:     "annual_report",
			Source:   "annual_report.pdf",
			Content:  "# annual_report\n\nRevenue grew 40% year over year. The balance sheet remains strong.",
			Modified: testNow,
		},
		{
			Name:     "leadership",
			Source:   "leadership.docx",
			Content:  "The CEO founded the company in 2010 and the board expanded in 2020.",
			Modified: testNow,
		},
		{
			Name:     "travel_notes",
			Source:   "travel_notes.txt",
			Content:  "Notes from the site visit last spring.",
			Modified: testNow,
		},
	}
}

func TestBuildHeader(t *testing.T) {
	out := Build("acme", testDocs(), testNow)

	if !strings.HasPrefix(out, "# ACME - Consolidated Analysis") {
		t.Fatalf("missing title, got prefix %q", out[:50])
	}
	for _, want := range []string{
		"Generated on: 2025-03-14 09:30:00",
		"Number of source documents: 3",
		"## Table of Contents",
		"- [annual_report](#annual_report)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestBuildCategorizes(t *testing.T) {
	out := Build("acme", testDocs(), testNow)

	finIdx := strings.Index(out, "# Financial Data")
	mgmtIdx := strings.Index(out, "# Management")
	miscIdx := strings.Index(out, "# Miscellaneous")
	if finIdx < 0 || mgmtIdx < 0 || miscIdx < 0 {
		t.Fatalf("missing category headings: fin=%d mgmt=%d misc=%d", finIdx, mgmtIdx, miscIdx)
	}
	if !(finIdx < mgmtIdx && mgmtIdx < miscIdx) {
		t.Errorf("categories out of order: fin=%d mgmt=%d misc=%d", finIdx, mgmtIdx, miscIdx)
	}

	annIdx := strings.Index(out, "## annual_report")
	if annIdx < finIdx || annIdx > mgmtIdx {
		t.Errorf("annual_report not under Financial Data")
	}
	if strings.Contains(out, "# Industry Analysis") {
		t.Errorf("empty category should be omitted")
	}
}

func TestBuildStripsDuplicateTitle(t *testing.T) {
	out := Build("acme", testDocs(), testNow)

	if strings.Count(out, "# annual_report\n") > 1 {
		t.Errorf("duplicate document title not stripped:\n%s", out)
	}
	if !strings.Contains(out, "Revenue grew 40%") {
		t.Errorf("document body lost after title strip")
	}
}

func TestBuildSourcesTable(t *testing.T) {
	out := Build("acme", testDocs(), testNow)

	for _, want := range []string{
		"## Document Sources",
		"| Source | Type | Date Included |",
		"| annual_report | .pdf | 2025-03-14 |",
		"| leadership | .docx | 2025-03-14 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("sources table missing %q", want)
		}
	}
}

func TestGenerateFile(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed")
	if err := os.MkdirAll(processed, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(processed, "annual_report.md")
	if err := os.WriteFile(path, []byte("Revenue and profit both improved."), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := GenerateFile("acme", []string{path}, "", testNow)
	if err != nil {
		t.Fatalf("GenerateFile: %v", err)
	}
	if filepath.Dir(out) != dir {
		t.Errorf("master file written to %s, want directory %s", out, dir)
	}
	if base := filepath.Base(out); !strings.HasPrefix(base, "acme_master_") || !strings.HasSuffix(base, ".md") {
		t.Errorf("unexpected master filename %s", base)
	}

	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "# ACME - Consolidated Analysis") {
		t.Errorf("master file missing title")
	}
}

func TestGenerateFileNoDocs(t *testing.T) {
	if _, err := GenerateFile("acme", nil, "", testNow); err == nil {
		t.Fatal("expected error for empty file list")
	}
}
