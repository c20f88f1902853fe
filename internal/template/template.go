// Package template loads markdown prompt templates. A template carries
// a "System Prompt" and a "User Prompt" subsection, each under a
// level-2 heading; both are required.
package template

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	ErrMissingSystemPrompt = errors.New(`template missing "System Prompt" section`)
	ErrMissingUserPrompt   = errors.New(`template missing "User Prompt" section`)
)

// Template holds the extracted prompt bodies.
type Template struct {
	System string
	User   string
}

// Default returns the built-in equity research template, used when no
// template file is configured.
func Default() Template {
	return Template{
		System: "You are a senior equity research analyst at an investment firm. You produce clear, well-structured, institutional-quality research on {company}. Base every statement on the provided source material and never invent figures.",
		User:   "Using the provided materials about {company}, write the requested section of an equity research report. Report date: {timestamp}.",
	}
}

// Load reads and parses a template file.
func Load(path string) (Template, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template: %w", err)
	}
	return Parse(src)
}

// Parse extracts the prompt sections from template markdown. Each
// section runs from its level-2 heading to the next heading of level 2
// or shallower.
func Parse(src []byte) (Template, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	type mark struct {
		level     int
		title     string
		bodyStart int // byte offset just past the heading line
		lineStart int // byte offset of the heading line itself
	}
	var marks []mark

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		lines := h.Lines()
		if lines.Len() == 0 {
			continue
		}
		seg := lines.At(lines.Len() - 1)
		lineStart := seg.Start
		for lineStart > 0 && src[lineStart-1] != '\n' {
			lineStart--
		}
		marks = append(marks, mark{
			level:     h.Level,
			title:     string(h.Text(src)),
			bodyStart: seg.Stop,
			lineStart: lineStart,
		})
	}

	var tmpl Template
	var haveSystem, haveUser bool
	for i, m := range marks {
		if m.level != 2 {
			continue
		}
		end := len(src)
		for _, next := range marks[i+1:] {
			if next.level <= 2 {
				end = next.lineStart
				break
			}
		}
		body := strings.TrimSpace(string(src[m.bodyStart:end]))
		switch strings.ToLower(strings.TrimSpace(m.title)) {
		case "system prompt":
			tmpl.System = body
			haveSystem = true
		case "user prompt":
			tmpl.User = body
			haveUser = true
		}
	}

	if !haveSystem || tmpl.System == "" {
		return Template{}, ErrMissingSystemPrompt
	}
	if !haveUser || tmpl.User == "" {
		return Template{}, ErrMissingUserPrompt
	}
	return tmpl, nil
}

// Render substitutes the {company} and {timestamp} placeholders in both
// prompts.
func (t Template) Render(company string, now time.Time) Template {
	ts := now.Format("2006-01-02 15:04:05")
	return Template{
		System: substitute(t.System, company, ts),
		User:   substitute(t.User, company, ts),
	}
}

func substitute(s, company, ts string) string {
	s = strings.ReplaceAll(s, "{company}", company)
	return strings.ReplaceAll(s, "{timestamp}", ts)
}
