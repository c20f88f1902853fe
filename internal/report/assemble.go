package report

import (
	"fmt"
	"strings"
)

// NormalizeHeading forces content to begin with the canonical heading
// for its phase. Idempotent: applying it to its own output is a no-op.
func NormalizeHeading(content, heading string, level int) string {
	if level <= 0 {
		level = 1
	}
	canonical := strings.Repeat("#", level) + " " + heading
	content = strings.TrimSpace(content)

	if content == canonical || strings.HasPrefix(content, canonical+"\n") {
		return content
	}

	first, rest, found := strings.Cut(content, "\n")
	if isHeadingLine(first) {
		if !found {
			return canonical
		}
		return canonical + "\n" + rest
	}

	if content == "" {
		return canonical
	}
	return canonical + "\n\n" + content
}

func isHeadingLine(line string) bool {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	return n >= 1 && n <= 6 && n < len(line) && (line[n] == ' ' || line[n] == '\t')
}

// Assemble renders the final report document: title block, every phase
// section in declared order separated by horizontal rules, and the
// metadata footer.
func Assemble(r *Report) string {
	parts := []string{
		fmt.Sprintf("# Equity Research Report: %s", strings.ToUpper(r.Company)),
		fmt.Sprintf("Generated on: %s", r.GeneratedAt.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Number of source documents: %d", len(r.Sources)),
	}

	for _, res := range r.Results {
		parts = append(parts, "---")
		parts = append(parts, NormalizeHeading(res.Body(), res.Spec.Heading, res.Spec.Level))
	}

	parts = append(parts,
		"---",
		"## Report Metadata",
		fmt.Sprintf("- Company: %s", r.Company),
		fmt.Sprintf("- Generation Date: %s", r.GeneratedAt.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("- Corpus Size: %d bytes", r.CorpusBytes),
		fmt.Sprintf("- LLM Model: %s", r.Model),
	)
	if len(r.Sources) > 0 {
		parts = append(parts, fmt.Sprintf("- Source Documents: %s", strings.Join(r.Sources, ", ")))
	}

	return strings.Join(parts, "\n\n") + "\n"
}
