package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ppiankov/textsense/internal/util"
	"github.com/ppiankov/textsense/internal/worker"
)

// TEIBackend talks to a text-embeddings-inference style server hosting the
// sequence-classification model
type TEIBackend struct {
	baseURL    string
	humanLabel string
	aiLabel    string
	httpClient *http.Client
	limiter    *worker.Limiter
}

// TEI API structures
type teiInfo struct {
	ModelID        string `json:"model_id"`
	MaxInputLength int    `json:"max_input_length"`
}

type teiTokenizeRequest struct {
	Inputs           string `json:"inputs"`
	AddSpecialTokens bool   `json:"add_special_tokens"`
}

type teiToken struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Special bool   `json:"special"`
	Start   *int   `json:"start"`
	Stop    *int   `json:"stop"`
}

type teiPredictRequest struct {
	Inputs    string `json:"inputs"`
	Truncate  bool   `json:"truncate"`
	RawScores bool   `json:"raw_scores"`
}

type teiPrediction struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

type teiError struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

// NewTEIBackend creates a new TEI backend
func NewTEIBackend(config Config, limiter *worker.Limiter) (*TEIBackend, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second // CPU inference on long inputs can be slow
	}

	humanLabel, aiLabel := config.HumanLabel, config.AILabel
	if humanLabel == "" {
		humanLabel = "Human"
	}
	if aiLabel == "" {
		aiLabel = "ChatGPT"
	}
	if strings.EqualFold(humanLabel, aiLabel) {
		return nil, fmt.Errorf("human and AI labels must differ (both %q)", humanLabel)
	}

	return &TEIBackend{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		humanLabel: humanLabel,
		aiLabel:    aiLabel,
		httpClient: util.NewHTTPClient(timeout, config.HTTPProxy, config.HTTPSProxy),
		limiter:    limiter,
	}, nil
}

// Name returns the backend name
func (b *TEIBackend) Name() string {
	return "tei"
}

// Load verifies the server is up and hosts the requested model
func (b *TEIBackend) Load(ctx context.Context, modelID string) (Tokenizer, Model, error) {
	var info teiInfo
	if err := b.do(ctx, http.MethodGet, "/info", nil, &info); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrLoad, modelID, err)
	}

	if modelID != "" && info.ModelID != "" && info.ModelID != modelID {
		return nil, nil, fmt.Errorf("%w: server at %s hosts %s, want %s", ErrLoad, b.baseURL, info.ModelID, modelID)
	}

	return b, b, nil
}

// Tokenize calls the server tokenizer and applies the hard length cap
func (b *TEIBackend) Tokenize(ctx context.Context, text string, opts TokenizeOptions) (*Encoding, error) {
	var batches [][]teiToken
	req := teiTokenizeRequest{Inputs: text, AddSpecialTokens: true}
	if err := b.do(ctx, http.MethodPost, "/tokenize", req, &batches); err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	if len(batches) == 0 {
		return nil, fmt.Errorf("tokenize: empty response")
	}

	tokens := batches[0]
	limit := maxLength(opts)
	enc := &Encoding{Text: text}

	if len(tokens) > limit {
		if !opts.Truncate {
			return nil, fmt.Errorf("%w: %d > %d", ErrTooLong, len(tokens), limit)
		}
		tokens = tokens[:limit]
		enc.Truncated = true
		enc.Text = coveredText(text, tokens)
	}

	enc.IDs = make([]int, len(tokens))
	for i, tok := range tokens {
		enc.IDs[i] = tok.ID
	}
	enc.AttentionMask = onesMask(len(tokens))

	return enc, nil
}

// coveredText returns the prefix of text spanned by the kept tokens, using
// the byte offsets reported by the server
func coveredText(text string, tokens []teiToken) string {
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		if tok.Special || tok.Stop == nil {
			continue
		}
		stop := *tok.Stop
		if stop <= 0 || stop > len(text) {
			return text
		}
		if stop < len(text) && !utf8.RuneStart(text[stop]) {
			return text
		}
		return text[:stop]
	}
	return text
}

// Forward runs the classifier and maps the labelled raw scores onto Logits
func (b *TEIBackend) Forward(ctx context.Context, enc *Encoding) (Logits, error) {
	if enc == nil {
		return Logits{}, fmt.Errorf("nil encoding")
	}

	var preds []teiPrediction
	req := teiPredictRequest{Inputs: enc.Text, Truncate: true, RawScores: true}
	if err := b.do(ctx, http.MethodPost, "/predict", req, &preds); err != nil {
		return Logits{}, fmt.Errorf("predict: %w", err)
	}

	return b.mapLabels(preds)
}

func (b *TEIBackend) mapLabels(preds []teiPrediction) (Logits, error) {
	var logits Logits
	var haveHuman, haveAI bool
	for _, p := range preds {
		switch {
		case strings.EqualFold(p.Label, b.humanLabel):
			logits[HumanIndex] = p.Score
			haveHuman = true
		case strings.EqualFold(p.Label, b.aiLabel):
			logits[AIIndex] = p.Score
			haveAI = true
		}
	}

	if !haveHuman || !haveAI {
		labels := make([]string, 0, len(preds))
		for _, p := range preds {
			labels = append(labels, p.Label)
		}
		return Logits{}, fmt.Errorf("predict: labels %v do not include %q and %q", labels, b.humanLabel, b.aiLabel)
	}

	return logits, nil
}

// do makes a JSON request against the TEI API
func (b *TEIBackend) do(ctx context.Context, method, path string, body, out any) error {
	url := b.baseURL + path

	if err := b.limiter.Wait(ctx, url); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr teiError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("API error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API error (%d): %s", httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
