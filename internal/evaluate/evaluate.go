// Package evaluate grades teacher responses against a question and its rule.
//
// Two engines share the Evaluator interface: Remote asks an OpenAI-compatible
// model, Heuristic applies fixed local rules. Callers normally go through
// Fallback, which never fails: a remote error becomes a heuristic verdict plus
// a notice for the user.
package evaluate

import (
	"context"

	"github.com/ppiankov/plancours/internal/model"
)

// Input is one response to grade
type Input struct {
	Question string
	Rule     string
	Response string
}

// Evaluator produces a verdict for one response
type Evaluator interface {
	Evaluate(ctx context.Context, in Input) (model.Verdict, error)
	Engine() model.Engine
}

// NeedsReevaluation reports whether a stored verdict should be replaced
// before submission: there is none yet, or it came from the heuristic while
// the remote engine is available.
func NeedsReevaluation(v *model.Verdict, remoteAvailable bool) bool {
	if v == nil || v.Status == "" {
		return true
	}
	return v.Engine == model.EngineHeuristic && remoteAvailable
}
