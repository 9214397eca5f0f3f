package llm

import (
	"context"
	"time"

	"github.com/ppiankov/plancours/internal/model"
)

// Provider defines the interface for remote answer evaluation backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Evaluate grades one response against its question and rule
	Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// EvaluateRequest contains the three dynamic inputs of one evaluation
type EvaluateRequest struct {
	Question string
	Rule     string
	Response string

	// Model overrides the configured model when set
	Model string
}

// EvaluateResponse is the parsed grading reply
type EvaluateResponse struct {
	Status     model.Status
	Feedback   string
	Highlights []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai" (alias "chatgpt")
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey enables remote mode; empty disables it
	APIKey string

	// BaseURL for OpenAI-compatible endpoints
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// MaxTokens bounds the reply length
	MaxTokens int

	// Temperature is kept low so grading is near-deterministic
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the grading defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Model:       model.DefaultRemoteModel,
		Timeout:     30 * time.Second,
		MaxTokens:   350,
		Temperature: 0.2,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config, filling unset values from defaults
func ConfigFromModel(mc model.LLMConfig) Config {
	cfg := DefaultConfig()
	if mc.Provider != "" {
		cfg.Provider = mc.Provider
	}
	if mc.Model != "" {
		cfg.Model = mc.Model
	}
	if mc.Timeout > 0 {
		cfg.Timeout = mc.Timeout
	}
	if mc.MaxTokens > 0 {
		cfg.MaxTokens = mc.MaxTokens
	}
	if mc.Temperature > 0 {
		cfg.Temperature = mc.Temperature
	}
	cfg.APIKey = mc.APIKey
	cfg.BaseURL = mc.BaseURL
	cfg.HTTPProxy = mc.HTTPProxy
	cfg.HTTPSProxy = mc.HTTPSProxy
	cfg.NoProxy = mc.NoProxy
	return cfg
}
