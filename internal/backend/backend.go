// Package backend defines the opaque capability behind the model gateway:
// a tokenizer and a two-class sequence-classification model, plus the loaders
// that acquire them.
package backend

import (
	"context"
	"errors"
)

// MaxSequenceLength is the hard cap on subword tokens fed to the model
const MaxSequenceLength = 512

// Class indices in Logits
const (
	HumanIndex = 0
	AIIndex    = 1
)

// Logits are the raw, unnormalized class scores: index 0 is human, 1 is AI
type Logits [2]float64

// TokenizeOptions mirror the tokenizer call used for inference
type TokenizeOptions struct {
	MaxLength int  // Hard cap in tokens; 0 means MaxSequenceLength
	Truncate  bool // Drop tokens beyond MaxLength instead of failing
	Pad       bool // Pad to the longest sequence; a single sequence needs no padding tokens
}

// DefaultTokenizeOptions returns the options used by the gateway
func DefaultTokenizeOptions() TokenizeOptions {
	return TokenizeOptions{MaxLength: MaxSequenceLength, Truncate: true, Pad: true}
}

// Encoding is tokenized input ready for a forward pass
type Encoding struct {
	IDs           []int
	AttentionMask []int
	// Text is the portion of the input covered by IDs
	Text      string
	Truncated bool
}

// Tokenizer converts text into model input
type Tokenizer interface {
	Tokenize(ctx context.Context, text string, opts TokenizeOptions) (*Encoding, error)
}

// Model runs a pure forward pass with no training side effects
type Model interface {
	Forward(ctx context.Context, enc *Encoding) (Logits, error)
}

// Loader acquires a tokenizer and model for a model identifier; this may
// perform network I/O
type Loader interface {
	// Name returns the backend name
	Name() string

	// Load returns the tokenizer/model pair or an error wrapping ErrLoad
	Load(ctx context.Context, modelID string) (Tokenizer, Model, error)
}

// ErrLoad marks failures to acquire the tokenizer/model pair
var ErrLoad = errors.New("load pretrained classifier")

// ErrTooLong is returned by Tokenize when truncation is disabled and the
// input exceeds MaxLength
var ErrTooLong = errors.New("input exceeds maximum sequence length")

func maxLength(opts TokenizeOptions) int {
	if opts.MaxLength <= 0 || opts.MaxLength > MaxSequenceLength {
		return MaxSequenceLength
	}
	return opts.MaxLength
}

func onesMask(n int) []int {
	mask := make([]int, n)
	for i := range mask {
		mask[i] = 1
	}
	return mask
}
