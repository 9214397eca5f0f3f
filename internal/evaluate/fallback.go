package evaluate

import (
	"context"
	"fmt"

	"github.com/ppiankov/plancours/internal/logging"
	"github.com/ppiankov/plancours/internal/metrics"
	"github.com/ppiankov/plancours/internal/model"
)

// noticeFormat is shown to the teacher when the remote engine failed
const noticeFormat = "Analyse IA indisponible (%v). Évaluation locale utilisée."

// Outcome is a verdict plus an optional non-blocking notice
type Outcome struct {
	Verdict model.Verdict
	Notice  string
}

// Fallback evaluates with a primary engine and substitutes the heuristic
// when it fails. Evaluate never returns an error.
type Fallback struct {
	primary   Evaluator
	heuristic Heuristic
	metrics   *metrics.Recorder
	logger    logging.Logger
}

// Option configures a Fallback
type Option func(*Fallback)

// WithMetrics records verdicts, failures and substitutions
func WithMetrics(r *metrics.Recorder) Option {
	return func(f *Fallback) { f.metrics = r }
}

// WithLogger logs substitutions
func WithLogger(l logging.Logger) Option {
	return func(f *Fallback) { f.logger = logging.OrNop(l) }
}

// WithFallback wraps primary. A nil primary means heuristic only.
func WithFallback(primary Evaluator, opts ...Option) *Fallback {
	f := &Fallback{
		primary: primary,
		logger:  logging.Nop{},
	}
	if f.primary == nil {
		f.primary = Heuristic{}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RemoteAvailable reports whether the primary engine is the remote one
func (f *Fallback) RemoteAvailable() bool {
	return f.primary.Engine() == model.EngineChatGPT
}

// Engine returns the preferred engine
func (f *Fallback) Engine() model.Engine {
	return f.primary.Engine()
}

// Evaluate grades in with the primary engine, falling back to the heuristic
// on any error. The notice carries the error text.
func (f *Fallback) Evaluate(ctx context.Context, in Input) Outcome {
	v, err := f.primary.Evaluate(ctx, in)
	if err == nil && v.Status.Valid() {
		f.metrics.Evaluation(string(v.Engine), string(v.Status))
		return Outcome{Verdict: v}
	}
	if err == nil {
		err = fmt.Errorf("unknown status %q", v.Status)
	}

	f.metrics.EvaluationFailure(string(f.primary.Engine()))
	f.metrics.Fallback()
	f.logger.Warnf("evaluation with %s failed, using heuristic: %v", f.primary.Engine(), err)

	hv := f.heuristic.Verdict(in)
	f.metrics.Evaluation(string(hv.Engine), string(hv.Status))
	return Outcome{
		Verdict: hv,
		Notice:  fmt.Sprintf(noticeFormat, err),
	}
}
