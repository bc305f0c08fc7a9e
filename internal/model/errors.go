package model

import "errors"

var (
	// ErrModelUnavailable means the tokenizer/model pair could not be loaded
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrClassificationFailed means tokenization or inference failed for one input
	ErrClassificationFailed = errors.New("classification failed")

	// ErrInputTooShort is returned before the model is invoked at all
	ErrInputTooShort = errors.New("input too short")

	// ErrInvalidMaxWords means the word cap is outside the accepted range
	ErrInvalidMaxWords = errors.New("invalid max words")

	// ErrInvalidMode means the mode is neither fast nor detailed
	ErrInvalidMode = errors.New("invalid mode")
)

// RemediationHint returns a user-facing hint for a detection error, or ""
func RemediationHint(err error) string {
	switch {
	case errors.Is(err, ErrClassificationFailed):
		return "try a shorter text"
	case errors.Is(err, ErrModelUnavailable):
		return "check that the inference backend is reachable, then restart or re-initialize"
	case errors.Is(err, ErrInputTooShort):
		return "enter at least 10 characters of text"
	case errors.Is(err, ErrInvalidMaxWords):
		return "choose a word limit between 100 and 2000"
	case errors.Is(err, ErrInvalidMode):
		return "use mode fast or detailed"
	default:
		return ""
	}
}

// ErrorCode returns a stable machine-readable code for a detection error
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, ErrClassificationFailed):
		return "classification_failed"
	case errors.Is(err, ErrInputTooShort):
		return "input_too_short"
	case errors.Is(err, ErrInvalidMaxWords):
		return "invalid_max_words"
	case errors.Is(err, ErrInvalidMode):
		return "invalid_mode"
	default:
		return "internal"
	}
}
