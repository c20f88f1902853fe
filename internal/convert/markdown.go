package convert

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownConverter passes markdown through unchanged, using the first
// level-1 heading (when present) as the document title.
type MarkdownConverter struct{}

func (c *MarkdownConverter) Convert(r io.Reader, filename string) (*Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	title := stem(filename)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			if t := strings.TrimSpace(string(h.Text(src))); t != "" {
				title = t
			}
			break
		}
	}

	return &Result{
		Title:    title,
		Markdown: strings.TrimSpace(string(src)),
	}, nil
}
