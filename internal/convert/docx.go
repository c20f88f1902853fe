package convert

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXConverter renders .docx paragraphs as markdown, mapping heading
// styles onto markdown heading levels.
type DOCXConverter struct{}

func (c *DOCXConverter) Convert(r io.Reader, filename string) (*Result, error) {
	// go-docx needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "finreport-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var md strings.Builder
	emit := func(block string) {
		if block == "" {
			return
		}
		if md.Len() > 0 {
			md.WriteString("\n\n")
		}
		md.WriteString(block)
	}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if level := paragraphHeadingLevel(para); level > 0 {
			emit(strings.Repeat("#", level) + " " + text)
		} else {
			emit(text)
		}
	}

	return &Result{
		Title:    stem(filename),
		Markdown: md.String(),
	}, nil
}

func paragraphHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	for level := 1; level <= 6; level++ {
		if style == fmt.Sprintf("heading%d", level) {
			return level
		}
	}
	return 0
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
