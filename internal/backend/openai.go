package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ppiankov/textsense/internal/worker"
	"github.com/sashabaranov/go-openai"
)

const judgePrompt = `Decide whether the following text was written by a human or generated by an AI language model.
Answer with a JSON object of the form {"human": <probability>, "ai": <probability>} where both probabilities are between 0 and 1 and sum to 1. Do not add any other keys or prose.`

// minJudgeProbability keeps log() finite when the judge answers 0
const minJudgeProbability = 1e-6

// OpenAIBackend uses a chat model as a zero-shot two-class judge. It is an
// alternative to a hosted classifier, not a reproduction of one.
type OpenAIBackend struct {
	client  *openai.Client
	model   string
	apiKey  string
	baseURL string
	timeout time.Duration
	limiter *worker.Limiter
}

type judgeVerdict struct {
	Human *float64 `json:"human"`
	AI    *float64 `json:"ai"`
}

// NewOpenAIBackend creates a new OpenAI judge backend
func NewOpenAIBackend(config Config, limiter *worker.Limiter) (*OpenAIBackend, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIBackend{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		apiKey:  config.APIKey,
		baseURL: clientConfig.BaseURL,
		timeout: timeout,
		limiter: limiter,
	}, nil
}

// Name returns the backend name
func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Load checks that the API is reachable with the configured key
func (b *OpenAIBackend) Load(ctx context.Context, modelID string) (Tokenizer, Model, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if _, err := b.client.ListModels(ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: %s via %s: %v", ErrLoad, b.model, b.baseURL, err)
	}
	return b, b, nil
}

// Tokenize approximates subword tokens with whitespace words
func (b *OpenAIBackend) Tokenize(ctx context.Context, text string, opts TokenizeOptions) (*Encoding, error) {
	return encodeWords(text, opts)
}

// Forward asks the judge for class probabilities and returns their logs as
// logits, so softmax recovers the normalized judge probabilities
func (b *OpenAIBackend) Forward(ctx context.Context, enc *Encoding) (Logits, error) {
	if enc == nil {
		return Logits{}, fmt.Errorf("nil encoding")
	}

	if err := b.limiter.Wait(ctx, b.baseURL); err != nil {
		return Logits{}, fmt.Errorf("rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: judgePrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: enc.Text,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens: 64,
		// Zero is dropped by omitempty
		Temperature: math.SmallestNonzeroFloat32,
	}

	resp, err := b.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Logits{}, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Logits{}, fmt.Errorf("no response from OpenAI")
	}

	return parseVerdict(resp.Choices[0].Message.Content)
}

func parseVerdict(content string) (Logits, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var v judgeVerdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &v); err != nil {
		return Logits{}, fmt.Errorf("parse judge verdict %q: %w", content, err)
	}
	if v.Human == nil || v.AI == nil {
		return Logits{}, fmt.Errorf("judge verdict %q is missing a class", content)
	}

	human, ai := clampProbability(*v.Human), clampProbability(*v.AI)
	return Logits{math.Log(human), math.Log(ai)}, nil
}

func clampProbability(p float64) float64 {
	if math.IsNaN(p) || p < minJudgeProbability {
		return minJudgeProbability
	}
	if p > 1 {
		return 1
	}
	return p
}
