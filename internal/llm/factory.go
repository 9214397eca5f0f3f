package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a provider from configuration.
// It returns (nil, nil) when no API key is configured: remote mode is off.
func NewProvider(config Config) (Provider, error) {
	if config.APIKey == "" {
		return nil, nil
	}

	switch strings.ToLower(config.Provider) {
	case "", "openai", "chatgpt":
		return NewOpenAIProvider(config)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}
