package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVConverter renders CSV rows as labeled markdown, batched under
// level-3 headings so downstream chunking has boundaries to cut on.
type CSVConverter struct{}

const csvBatchSize = 20

func (c *CSVConverter) Convert(r io.Reader, filename string) (*Result, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	res := &Result{Title: stem(filename)}
	if len(records) == 0 {
		return res, nil
	}

	headers := records[0]
	dataRows := records[1:]

	var md strings.Builder
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := i + csvBatchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}

		if md.Len() > 0 {
			md.WriteString("\n\n")
		}
		// 1-indexed source rows, skipping the header line.
		fmt.Fprintf(&md, "### Rows %d-%d\n\n", i+2, end+1)
		md.WriteString("Headers: " + strings.Join(headers, ", ") + "\n")
		for _, row := range dataRows[i:end] {
			md.WriteString("\n")
			for j, cell := range row {
				if j > 0 {
					md.WriteString(", ")
				}
				if j < len(headers) {
					md.WriteString(headers[j] + ": " + cell)
				} else {
					md.WriteString(cell)
				}
			}
		}
	}

	res.Markdown = md.String()
	return res, nil
}
