package convert

import (
	"bufio"
	"io"
	"strings"
)

// TextConverter handles plain text files. Paragraphs are detected on
// blank lines and kept apart in the markdown output.
type TextConverter struct{}

func (c *TextConverter) Convert(r io.Reader, filename string) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Result{
		Title:    stem(filename),
		Markdown: strings.Join(paragraphs, "\n\n"),
	}, nil
}
