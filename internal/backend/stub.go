package backend

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync/atomic"
)

// stubVocabSize matches the RoBERTa vocabulary so stub ids look plausible
const stubVocabSize = 50265

// ForwardFunc computes logits for the text of an encoding
type ForwardFunc func(text string) (Logits, error)

// Stub is a deterministic in-process backend. Its verdicts carry no meaning;
// it exists for offline smoke runs and for tests of the caching and
// heuristic layers.
type Stub struct {
	// ForwardFn overrides the default hash-derived logits
	ForwardFn ForwardFunc
	// LoadErr, when set, makes every Load fail
	LoadErr error

	loads    atomic.Int32
	forwards atomic.Int32
}

// NewStub creates a stub backend using fn for logits (nil uses the default)
func NewStub(fn ForwardFunc) *Stub {
	return &Stub{ForwardFn: fn}
}

// Name returns the backend name
func (s *Stub) Name() string {
	return "stub"
}

// Load returns the stub itself as both tokenizer and model
func (s *Stub) Load(ctx context.Context, modelID string) (Tokenizer, Model, error) {
	s.loads.Add(1)
	if s.LoadErr != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrLoad, modelID, s.LoadErr)
	}
	return s, s, nil
}

// Loads returns how many times Load was called
func (s *Stub) Loads() int {
	return int(s.loads.Load())
}

// Forwards returns how many forward passes ran
func (s *Stub) Forwards() int {
	return int(s.forwards.Load())
}

// Tokenize splits on whitespace and hashes each word into a vocabulary id
func (s *Stub) Tokenize(ctx context.Context, text string, opts TokenizeOptions) (*Encoding, error) {
	return encodeWords(text, opts)
}

// encodeWords treats each whitespace-delimited word as one token
func encodeWords(text string, opts TokenizeOptions) (*Encoding, error) {
	words := strings.Fields(text)
	limit := maxLength(opts)

	truncated := false
	if len(words) > limit {
		if !opts.Truncate {
			return nil, fmt.Errorf("%w: %d > %d", ErrTooLong, len(words), limit)
		}
		words = words[:limit]
		truncated = true
	}

	ids := make([]int, len(words))
	for i, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		ids[i] = int(h.Sum32() % stubVocabSize)
	}

	return &Encoding{
		IDs:           ids,
		AttentionMask: onesMask(len(ids)),
		Text:          strings.Join(words, " "),
		Truncated:     truncated,
	}, nil
}

// Forward returns logits for the encoded text
func (s *Stub) Forward(ctx context.Context, enc *Encoding) (Logits, error) {
	s.forwards.Add(1)
	if enc == nil {
		return Logits{}, fmt.Errorf("nil encoding")
	}
	if s.ForwardFn != nil {
		return s.ForwardFn(enc.Text)
	}
	return hashLogits(enc.Text), nil
}

// hashLogits maps text to a stable logit pair in [-2, 2]
func hashLogits(text string) Logits {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	x := float64(h.Sum64()%2001)/1000 - 1
	return Logits{-2 * x, 2 * x}
}

// FixedLogits returns a ForwardFunc that always yields the same scores
func FixedLogits(human, ai float64) ForwardFunc {
	return func(string) (Logits, error) {
		return Logits{human, ai}, nil
	}
}
