package evaluate

import (
	"fmt"

	"github.com/ppiankov/plancours/internal/cache"
	"github.com/ppiankov/plancours/internal/llm"
	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/worker"
)

// New selects the evaluation mode once from configuration: remote with
// heuristic fallback when an API key is set, heuristic only otherwise.
func New(cfg *model.Config, opts ...Option) (*Fallback, error) {
	llmConfig := llm.ConfigFromModel(cfg.LLM)

	provider, err := llm.NewProvider(llmConfig)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	if provider == nil {
		return WithFallback(Heuristic{}, opts...), nil
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	var primary Evaluator = NewRemote(provider, limiter, llmConfig.Model)

	if cfg.Cache.Enabled {
		cached := NewCached(primary, cache.New(cfg.Cache), llmConfig.Model, cfg.Cache.DiskTTL)
		if llmConfig.Timeout > 0 {
			cached.callTimeout = llmConfig.Timeout
		}
		primary = cached
	}

	return WithFallback(primary, opts...), nil
}
