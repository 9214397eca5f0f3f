package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/plancours/internal/util"
)

// OpenAIProvider implements the Provider interface for OpenAI chat completions
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Lightweight call: list models
	_, err := p.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Evaluate grades a response with one chat completion request
func (p *OpenAIProvider) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 350
	}
	temperature := p.config.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &EvaluationError{Reason: "no choices in completion"}
	}

	parsed, err := ParseReply(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &EvaluationError{Reason: "invalid reply (JSON verdict not found)", Err: err}
	}

	parsed.Model = resp.Model
	if parsed.Model == "" {
		parsed.Model = model
	}
	parsed.TokensUsed = resp.Usage.TotalTokens
	return parsed, nil
}

// classifyError turns client errors into EvaluationError, keeping the status
// code and a body excerpt for non-2xx replies
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &EvaluationError{
			StatusCode: apiErr.HTTPStatusCode,
			Body:       excerpt(apiErr.Message),
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := string(reqErr.Body)
		if body == "" && reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &EvaluationError{
			StatusCode: reqErr.HTTPStatusCode,
			Body:       excerpt(body),
			Err:        err,
		}
	}

	return &EvaluationError{Reason: "request failed", Err: err}
}
