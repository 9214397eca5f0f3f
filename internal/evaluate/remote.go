package evaluate

import (
	"context"
	"errors"

	"github.com/ppiankov/plancours/internal/llm"
	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/worker"
)

// Remote grades responses with a chat-completion provider. Every failure is
// returned as *llm.EvaluationError.
type Remote struct {
	provider llm.Provider
	limiter  *worker.Limiter
	model    string
}

// NewRemote wraps provider. limiter may be nil.
func NewRemote(provider llm.Provider, limiter *worker.Limiter, modelName string) *Remote {
	if modelName == "" {
		modelName = model.DefaultRemoteModel
	}
	return &Remote{
		provider: provider,
		limiter:  limiter,
		model:    modelName,
	}
}

func (r *Remote) Engine() model.Engine { return model.EngineChatGPT }

// Model returns the configured model name
func (r *Remote) Model() string { return r.model }

func (r *Remote) Evaluate(ctx context.Context, in Input) (model.Verdict, error) {
	if err := r.limiter.Wait(ctx, r.model); err != nil {
		return model.Verdict{}, &llm.EvaluationError{Reason: "rate limit wait", Err: err}
	}

	resp, err := r.provider.Evaluate(ctx, llm.EvaluateRequest{
		Question: in.Question,
		Rule:     in.Rule,
		Response: in.Response,
		Model:    r.model,
	})
	if err != nil {
		var evalErr *llm.EvaluationError
		if errors.As(err, &evalErr) {
			return model.Verdict{}, evalErr
		}
		return model.Verdict{}, &llm.EvaluationError{Reason: "provider error", Err: err}
	}

	modelName := resp.Model
	if modelName == "" {
		modelName = r.model
	}
	highlights := resp.Highlights
	if highlights == nil {
		highlights = []string{}
	}

	return model.Verdict{
		Status:     resp.Status,
		Feedback:   resp.Feedback,
		Highlights: highlights,
		Engine:     model.EngineChatGPT,
		Model:      modelName,
	}, nil
}
