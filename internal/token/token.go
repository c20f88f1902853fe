package token

// Estimator reports the approximate token cost of a text span.
type Estimator interface {
	Estimate(text string) int
}

// Heuristic estimates tokens as ceil(len/4), the usual ~4 chars/token
// rule of thumb. Exact tokenization is not required for chunking.
type Heuristic struct{}

func (Heuristic) Estimate(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// Guarded wraps a fallible estimator (e.g. a real subword tokenizer) so
// that any error or panic silently degrades to the length heuristic.
func Guarded(fn func(text string) (int, error)) Estimator {
	return guarded{fn: fn}
}

type guarded struct {
	fn func(text string) (int, error)
}

func (g guarded) Estimate(text string) (n int) {
	defer func() {
		if recover() != nil {
			n = Heuristic{}.Estimate(text)
		}
	}()
	n, err := g.fn(text)
	if err != nil || n < 0 {
		return Heuristic{}.Estimate(text)
	}
	return n
}
