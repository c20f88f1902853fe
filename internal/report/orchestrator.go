package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/finreport/internal/chunker"
	"github.com/dgallion1/finreport/internal/llm"
	"github.com/dgallion1/finreport/internal/section"
	"github.com/dgallion1/finreport/internal/template"
)

// Options tunes the digest pre-pass.
type Options struct {
	DigestChunkTokens int     // token budget per digest chunk
	DigestMaxTokens   int     // output cap per digest summary call
	DigestTemperature float64 // sampling temperature for digest calls
	DigestConcurrency int     // in-flight digest calls
}

func (o *Options) applyDefaults() {
	if o.DigestChunkTokens <= 0 {
		o.DigestChunkTokens = 7000
	}
	if o.DigestMaxTokens <= 0 {
		o.DigestMaxTokens = 1500
	}
	if o.DigestTemperature <= 0 {
		o.DigestTemperature = 0.2
	}
	if o.DigestConcurrency <= 0 {
		o.DigestConcurrency = 3
	}
}

const digestSystemPrompt = "You are a financial analyst summarizing key information about a company. Provide only the factual information from the document without analysis or conclusions."

// PhaseResult is the outcome of one phase: generated text, or the error
// that replaces it in the assembled document.
type PhaseResult struct {
	Spec PhaseSpec
	Text string
	Err  error
}

// Body returns the phase text, or the failure placeholder carrying the
// phase heading and the error message.
func (p PhaseResult) Body() string {
	if p.Err != nil {
		level := p.Spec.Level
		if level <= 0 {
			level = 1
		}
		return fmt.Sprintf("%s %s\n\nError generating content: %v", strings.Repeat("#", level), p.Spec.Heading, p.Err)
	}
	return p.Text
}

// Report is one completed generation run: every phase result in
// declared order plus the metadata rendered into the final document.
type Report struct {
	Company     string
	Model       string
	GeneratedAt time.Time
	CorpusBytes int
	Sources     []string
	Results     []PhaseResult
}

// Failed counts phases that produced an error placeholder.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Generator drives the ordered execution of report phases against the
// inference gateway. It owns no cross-run state: the digest and section
// map are built per call and discarded.
type Generator struct {
	client   llm.Client
	splitter *chunker.Splitter
	log      *slog.Logger
	opts     Options
}

func NewGenerator(client llm.Client, log *slog.Logger, opts Options) *Generator {
	opts.applyDefaults()
	return &Generator{
		client:   client,
		splitter: chunker.NewSplitter(nil),
		log:      log,
		opts:     opts,
	}
}

// Generate runs the digest pre-pass and then every phase in order.
// Phase failures are captured into their PhaseResult; a failing phase
// never aborts the run, so the returned report always carries exactly
// one result per spec.
func (g *Generator) Generate(ctx context.Context, company, corpus string, tmpl template.Template, phases []PhaseSpec, sources []string) *Report {
	now := time.Now()
	rendered := tmpl.Render(company, now)

	digest := g.buildDigest(ctx, company, corpus)
	sections := section.Extract(corpus)

	rep := &Report{
		Company:     company,
		Model:       g.client.Model(),
		GeneratedAt: now,
		CorpusBytes: len(corpus),
		Sources:     sources,
	}
	for _, spec := range phases {
		text, err := g.runPhase(ctx, rendered.System, company, spec, digest, sections)
		if err != nil {
			g.log.Error("phase generation failed", "phase", spec.Name, "error", err)
		}
		rep.Results = append(rep.Results, PhaseResult{Spec: spec, Text: text, Err: err})
	}
	return rep
}

// buildDigest splits the corpus into large chunks and asks for a
// neutral factual summary of each. Chunk calls run with bounded
// concurrency but their summaries are joined in chunk order. A failed
// chunk is logged and dropped; the digest degrades rather than aborts.
func (g *Generator) buildDigest(ctx context.Context, company, corpus string) string {
	chunks := g.splitter.Split(corpus, g.opts.DigestChunkTokens)
	if len(chunks) == 0 {
		return ""
	}
	g.log.Info("building document digest", "chunks", len(chunks))

	parts := make([]string, len(chunks))
	sem := make(chan struct{}, g.opts.DigestConcurrency)
	var wg sync.WaitGroup

	for i, c := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()
			out, err := g.client.Complete(ctx, llm.Request{
				System:      digestSystemPrompt,
				User:        fmt.Sprintf("Summarize the key information about %s from this document, focusing on extracting factual data:\n\n%s", company, text),
				Temperature: g.opts.DigestTemperature,
				MaxTokens:   g.opts.DigestMaxTokens,
			})
			if err != nil {
				g.log.Error("digest chunk summarization failed", "chunk", i, "error", err)
				return
			}
			parts[i] = out
		}(i, c.Text)
	}
	wg.Wait()

	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// runPhase makes the single inference attempt for one phase. Digest-only
// phases skip routing; the rest get the routed section content appended
// after the digest.
func (g *Generator) runPhase(ctx context.Context, system, company string, spec PhaseSpec, digest string, sections *section.Map) (string, error) {
	var user strings.Builder
	user.WriteString(strings.ReplaceAll(spec.Instruction, "{company}", company))
	user.WriteString("\n\n")
	user.WriteString(digest)
	if !spec.DigestOnly {
		user.WriteString("\n\nSource material:\n\n")
		user.WriteString(section.Route(sections, spec.Keywords))
	}

	return g.client.Complete(ctx, llm.Request{
		System:      system,
		User:        user.String(),
		Temperature: spec.Temperature,
		MaxTokens:   spec.MaxTokens,
	})
}
