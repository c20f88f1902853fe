package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/finreport/internal/llm"
	"github.com/dgallion1/finreport/internal/template"
)

// stubClient scripts gateway responses. failUser matches against the
// phase instruction carried in the user prompt.
type stubClient struct {
	mu         sync.Mutex
	calls      []llm.Request
	failUser   []string // fail any call whose user prompt contains one of these
	digestFunc func(user string) string
}

func (s *stubClient) Complete(_ context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	for _, f := range s.failUser {
		if strings.Contains(req.User, f) {
			return "", fmt.Errorf("simulated gateway failure")
		}
	}
	if req.System == digestSystemPrompt {
		if s.digestFunc != nil {
			return s.digestFunc(req.User), nil
		}
		return "chunk summary", nil
	}
	return "generated text", nil
}

func (s *stubClient) Model() string { return "stub-model" }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testTemplate = template.Template{
	System: "You are an analyst covering {company}.",
	User:   "unused",
}

const testCorpus = `# Business Overview

{company} sells widgets across three regions.

# Financial Data

Revenue grew 40% with improving margins.

# Risks

Customer concentration remains high.
`

func TestGenerate_OneResultPerPhaseInOrder(t *testing.T) {
	stub := &stubClient{}
	g := NewGenerator(stub, discard(), Options{DigestConcurrency: 1})
	phases := DefaultPhases()

	rep := g.Generate(context.Background(), "Acme", testCorpus, testTemplate, phases, nil)

	if len(rep.Results) != len(phases) {
		t.Fatalf("expected %d results, got %d", len(phases), len(rep.Results))
	}
	for i, res := range rep.Results {
		if res.Spec.Name != phases[i].Name {
			t.Errorf("result %d is %q, want %q", i, res.Spec.Name, phases[i].Name)
		}
		if res.Err != nil {
			t.Errorf("phase %q unexpectedly failed: %v", res.Spec.Name, res.Err)
		}
	}
	if rep.Model != "stub-model" {
		t.Errorf("model = %q", rep.Model)
	}
	if rep.CorpusBytes != len(testCorpus) {
		t.Errorf("corpus bytes = %d", rep.CorpusBytes)
	}
}

func TestGenerate_PhaseFailureIsIsolated(t *testing.T) {
	stub := &stubClient{failUser: []string{"Financial Analysis section"}}
	g := NewGenerator(stub, discard(), Options{DigestConcurrency: 1})

	rep := g.Generate(context.Background(), "Acme", testCorpus, testTemplate, DefaultPhases(), nil)

	if rep.Failed() != 1 {
		t.Fatalf("expected exactly one failed phase, got %d", rep.Failed())
	}
	doc := Assemble(rep)
	if !strings.Contains(doc, "# Financial Analysis\n\nError generating content: simulated gateway failure") {
		t.Errorf("failed phase should render its placeholder:\n%s", doc)
	}
	// Every other phase still contributed content.
	for _, heading := range []string{"# Executive Summary", "# Business Overview", "# Conclusion"} {
		idx := strings.Index(doc, heading)
		if idx < 0 {
			t.Errorf("missing section %q", heading)
			continue
		}
		if !strings.Contains(doc[idx:], "generated text") {
			t.Errorf("section %q has no generated content", heading)
		}
	}
}

func TestGenerate_DigestJoinedInChunkOrder(t *testing.T) {
	// Corpus with several headed sections, split small so the digest
	// needs multiple chunk calls.
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&sb, "## Part %d\n\n%s\n\n", i, strings.Repeat("detail ", 60))
	}
	corpus := sb.String()

	stub := &stubClient{digestFunc: func(user string) string {
		// Echo the part marker so ordering is observable.
		if i := strings.Index(user, "## Part "); i >= 0 {
			return "summary of part " + string(user[i+8])
		}
		return "summary"
	}}
	g := NewGenerator(stub, discard(), Options{DigestChunkTokens: 120, DigestConcurrency: 4})

	digest := g.buildDigest(context.Background(), "Acme", corpus)

	want := -1
	for i := 0; i < 6; i++ {
		idx := strings.Index(digest, fmt.Sprintf("summary of part %d", i))
		if idx < 0 {
			t.Fatalf("digest missing part %d: %q", i, digest)
		}
		if idx < want {
			t.Fatalf("digest parts out of chunk order: %q", digest)
		}
		want = idx
	}
}

func TestBuildDigest_FailedChunkDropped(t *testing.T) {
	corpus := "## Alpha\n\n" + strings.Repeat("a ", 100) + "\n\n## Beta\n\n" + strings.Repeat("b ", 100)
	stub := &stubClient{
		failUser: []string{"## Alpha"},
		digestFunc: func(user string) string {
			return "beta summary"
		},
	}
	g := NewGenerator(stub, discard(), Options{DigestChunkTokens: 60, DigestConcurrency: 1})

	digest := g.buildDigest(context.Background(), "Acme", corpus)
	if strings.Contains(digest, "alpha") {
		t.Errorf("failed chunk leaked into digest: %q", digest)
	}
	if !strings.Contains(digest, "beta summary") {
		t.Errorf("surviving chunk missing from digest: %q", digest)
	}
}

func TestGenerate_EmptyCorpusStillProducesAllPhases(t *testing.T) {
	stub := &stubClient{}
	g := NewGenerator(stub, discard(), Options{DigestConcurrency: 1})

	rep := g.Generate(context.Background(), "Acme", "", testTemplate, DefaultPhases(), nil)
	if len(rep.Results) != len(DefaultPhases()) {
		t.Fatalf("expected all phases, got %d", len(rep.Results))
	}
	for _, res := range rep.Results {
		if res.Err != nil {
			t.Errorf("phase %q failed on empty corpus: %v", res.Spec.Name, res.Err)
		}
	}
	// No digest chunks for an empty corpus: only the phase calls went out.
	if len(stub.calls) != len(DefaultPhases()) {
		t.Errorf("expected %d calls, got %d", len(DefaultPhases()), len(stub.calls))
	}
}

func TestGenerate_RoutedPhasesGetSectionContent(t *testing.T) {
	stub := &stubClient{}
	g := NewGenerator(stub, discard(), Options{DigestConcurrency: 1})

	g.Generate(context.Background(), "Acme", testCorpus, testTemplate, DefaultPhases(), nil)

	var financialCall *llm.Request
	for i := range stub.calls {
		if strings.Contains(stub.calls[i].User, "Financial Analysis section") {
			financialCall = &stub.calls[i]
		}
	}
	if financialCall == nil {
		t.Fatal("financial analysis call not found")
	}
	if !strings.Contains(financialCall.User, "Revenue grew 40%") {
		t.Errorf("routed content missing from phase call: %q", financialCall.User)
	}
	if strings.Contains(financialCall.User, "Customer concentration") {
		t.Errorf("unrelated section routed into financial phase: %q", financialCall.User)
	}
	if financialCall.System != "You are an analyst covering Acme." {
		t.Errorf("system prompt not rendered: %q", financialCall.System)
	}
	if financialCall.Temperature != 0.3 || financialCall.MaxTokens != 2000 {
		t.Errorf("phase sampling settings not applied: %+v", financialCall)
	}
}
