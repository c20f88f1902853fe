package section

import (
	"bufio"
	"strings"
)

// General is the implicit section holding any text found before the
// first heading. It is always present, possibly with an empty body.
const General = "general"

// Map holds extracted sections keyed by normalized title, preserving
// first-encounter order. Duplicate titles accumulate into one body.
type Map struct {
	titles []string
	bodies map[string]string
}

// Normalize case-folds and trims a section title.
func Normalize(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Extract splits a corpus into titled sections on level-1 to level-3
// markdown headings. Re-extracting the concatenation of all sections,
// each re-wrapped under its own heading, yields the same mapping.
func Extract(corpus string) *Map {
	m := &Map{bodies: make(map[string]string)}
	m.accumulate(General, "")

	title := General
	var body strings.Builder
	flush := func() {
		m.accumulate(title, strings.TrimSpace(body.String()))
		body.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(corpus))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if t, ok := headingTitle(line); ok {
			flush()
			title = Normalize(t)
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	return m
}

// Titles returns the section titles in first-encounter order.
func (m *Map) Titles() []string {
	out := make([]string, len(m.titles))
	copy(out, m.titles)
	return out
}

// Body returns the accumulated body for a title (normalized before
// lookup).
func (m *Map) Body(title string) (string, bool) {
	b, ok := m.bodies[Normalize(title)]
	return b, ok
}

func (m *Map) Len() int {
	return len(m.titles)
}

func (m *Map) accumulate(title, body string) {
	if _, ok := m.bodies[title]; !ok {
		m.titles = append(m.titles, title)
		m.bodies[title] = body
		return
	}
	if body == "" {
		return
	}
	if m.bodies[title] == "" {
		m.bodies[title] = body
	} else {
		m.bodies[title] += "\n\n" + body
	}
}

// headingTitle reports whether line is a level-1..3 markdown heading
// and returns its title text.
func headingTitle(line string) (string, bool) {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 3 {
		return "", false
	}
	if n >= len(line) || line[n] != ' ' {
		return "", false
	}
	t := strings.TrimSpace(line[n+1:])
	if t == "" {
		return "", false
	}
	return t, true
}
