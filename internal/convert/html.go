package convert

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLConverter turns heading and content tags into markdown, skipping
// navigation chrome and scripts.
type HTMLConverter struct{}

func (c *HTMLConverter) Convert(r io.Reader, filename string) (*Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	res := &Result{Title: stem(filename)}
	if title := findTitle(doc); title != "" {
		res.Title = title
	}

	var md strings.Builder
	emit := func(block string) {
		block = strings.TrimSpace(block)
		if block == "" {
			return
		}
		if md.Len() > 0 {
			md.WriteString("\n\n")
		}
		md.WriteString(block)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if t := textContent(n); t != "" {
					emit(strings.Repeat("#", level) + " " + t)
				}
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "blockquote", "pre", "td":
				emit(textContent(n))
				return
			case "li":
				if t := textContent(n); t != "" {
					emit("- " + t)
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	body := findBody(doc)
	if body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	res.Markdown = md.String()
	return res, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
