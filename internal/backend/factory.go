package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/textsense/internal/model"
	"github.com/ppiankov/textsense/internal/worker"
)

// Config holds backend configuration
type Config struct {
	// Provider name: "tei", "openai", "stub"
	Provider string

	// BaseURL of the inference server or OpenAI-compatible endpoint
	BaseURL string

	// APIKey for OpenAI
	APIKey string

	// Model is the judge model for openai
	Model string

	// Class labels reported by the hosted classifier
	HumanLabel string
	AILabel    string

	Timeout time.Duration

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// ConfigFromModel converts model.BackendConfig to backend.Config
func ConfigFromModel(cfg model.BackendConfig) Config {
	return Config{
		Provider:   cfg.Provider,
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		HumanLabel: cfg.HumanLabel,
		AILabel:    cfg.AILabel,
		Timeout:    cfg.Timeout,
		HTTPProxy:  cfg.HTTPProxy,
		HTTPSProxy: cfg.HTTPSProxy,
	}
}

// NewLoader creates a loader based on configuration
func NewLoader(config Config, limiter *worker.Limiter) (Loader, error) {
	switch strings.ToLower(config.Provider) {
	case "tei", "huggingface", "hf":
		return NewTEIBackend(config, limiter)

	case "openai":
		return NewOpenAIBackend(config, limiter)

	case "stub":
		return NewStub(nil), nil

	case "":
		return nil, fmt.Errorf("no backend provider configured (supported: tei, openai, stub)")

	default:
		return nil, fmt.Errorf("unknown backend provider: %s (supported: tei, openai, stub)", config.Provider)
	}
}
