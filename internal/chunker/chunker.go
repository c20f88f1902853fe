package chunker

import (
	"strings"

	"github.com/dgallion1/finreport/internal/token"
)

// Chunk is one budget-bounded span of the source text.
type Chunk struct {
	Text   string
	Index  int
	Tokens int
}

// Splitter breaks text into chunks whose estimated token cost stays
// within a budget. Splitting is lossless: concatenating the chunk texts
// reproduces the input exactly.
type Splitter struct {
	est token.Estimator
}

func NewSplitter(est token.Estimator) *Splitter {
	if est == nil {
		est = token.Heuristic{}
	}
	return &Splitter{est: est}
}

// Split chunks text under maxTokens. It first splits on level-2/3
// heading boundaries (keeping each heading attached to the body that
// follows it) and greedily re-packs the segments; any packed chunk still
// over budget gets a second greedy pass at paragraph granularity. A
// single paragraph that alone exceeds the budget is emitted as its own
// oversized chunk rather than dropped.
func (s *Splitter) Split(text string, maxTokens int) []Chunk {
	if text == "" {
		return nil
	}
	if maxTokens <= 0 {
		maxTokens = 1
	}

	var pieces []string
	for _, packed := range s.pack(splitHeadings(text), maxTokens) {
		if s.est.Estimate(packed) <= maxTokens {
			pieces = append(pieces, packed)
			continue
		}
		pieces = append(pieces, s.pack(splitParagraphs(packed), maxTokens)...)
	}

	chunks := make([]Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, Chunk{Text: p, Index: i, Tokens: s.est.Estimate(p)})
	}
	return chunks
}

// pack greedily accumulates consecutive segments, flushing the running
// buffer whenever appending the next segment would exceed the budget.
func (s *Splitter) pack(segments []string, maxTokens int) []string {
	var result []string
	var current strings.Builder
	for _, seg := range segments {
		if current.Len() > 0 && s.est.Estimate(current.String()+seg) > maxTokens {
			result = append(result, current.String())
			current.Reset()
		}
		current.WriteString(seg)
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}

// splitHeadings cuts text at lines starting a level-2 or level-3
// markdown heading. Newlines stay with their lines so the pieces
// concatenate back to the input.
func splitHeadings(text string) []string {
	var segments []string
	var current strings.Builder
	rest := text
	for len(rest) > 0 {
		line := rest
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line = rest[:i+1]
			rest = rest[i+1:]
		} else {
			rest = ""
		}
		if isSectionHeading(line) && current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}

func isSectionHeading(line string) bool {
	return strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "### ")
}

// splitParagraphs cuts text at blank-line boundaries, keeping each run
// of blank lines attached to the paragraph it terminates.
func splitParagraphs(text string) []string {
	var parts []string
	start := 0
	i := 0
	for i+1 < len(text) {
		if text[i] == '\n' && text[i+1] == '\n' {
			j := i + 1
			for j < len(text) && text[j] == '\n' {
				j++
			}
			parts = append(parts, text[start:j])
			start = j
			i = j
		} else {
			i++
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}
