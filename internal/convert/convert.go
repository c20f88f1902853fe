// Package convert renders source documents of assorted formats into
// markdown text for the report corpus.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Result is one source document rendered to markdown.
type Result struct {
	Title    string
	Markdown string
}

// Converter renders raw document bytes into markdown.
type Converter interface {
	Convert(r io.Reader, filename string) (*Result, error)
}

// SupportedExtensions lists file extensions this pipeline can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate converter for a filename.
func ForFile(filename string) (Converter, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return &TextConverter{}, nil
	case ".md", ".markdown":
		return &MarkdownConverter{}, nil
	case ".csv":
		return &CSVConverter{}, nil
	case ".html", ".htm":
		return &HTMLConverter{}, nil
	case ".pdf":
		return &PDFConverter{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXConverter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// File converts a document on disk.
func File(path string) (*Result, error) {
	conv, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return conv.Convert(f, filepath.Base(path))
}

// stem strips the extension from a filename for use as a title.
func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
