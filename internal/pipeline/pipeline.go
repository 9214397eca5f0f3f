// Package pipeline turns a completed form session into a submitted plan:
// backfill verdicts, summarize, render the PDF, upload it and record the plan.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/plancours/internal/evaluate"
	"github.com/ppiankov/plancours/internal/forms"
	"github.com/ppiankov/plancours/internal/logging"
	"github.com/ppiankov/plancours/internal/metrics"
	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/pdf"
	"github.com/ppiankov/plancours/internal/session"
	"github.com/ppiankov/plancours/internal/store"
	"github.com/ppiankov/plancours/internal/worker"
)

const (
	msgNoActiveForm = "Aucun formulaire actif n'est disponible."
	msgUnanswered   = "Veuillez répondre à toutes les questions du formulaire."

	contentType = "application/pdf"
)

// Evaluator grades responses with fallback and tells whether the remote
// engine is in use
type Evaluator interface {
	Evaluate(ctx context.Context, in evaluate.Input) evaluate.Outcome
	RemoteAvailable() bool
}

// Pipeline orchestrates the submission of one plan
type Pipeline struct {
	evaluator    Evaluator
	plans        store.PlanStore
	blobs        store.BlobStore
	metrics      *metrics.Recorder
	logger       logging.Logger
	workers      int
	minQuestions int
	now          func() time.Time
	newID        func() string
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithMetrics records submission outcomes and document sizes
func WithMetrics(r *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = r }
}

// WithLogger sets the progress logger
func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.logger = logging.OrNop(l) }
}

// WithClock replaces time.Now, for deterministic paths and timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(cfg *model.Config, evaluator Evaluator, plans store.PlanStore, blobs store.BlobStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		evaluator:    evaluator,
		plans:        plans,
		blobs:        blobs,
		logger:       logging.Nop{},
		workers:      cfg.Concurrency.Workers,
		minQuestions: cfg.Submission.MinQuestions,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	if p.workers <= 0 {
		p.workers = 1
	}
	if p.minQuestions <= 0 {
		p.minQuestions = 1
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is a successful submission
type Result struct {
	Plan     *model.Plan
	Document []byte

	// Notices are non-blocking messages from evaluation fallbacks, in form order
	Notices []string
}

// Submit validates the session, completes missing or stale verdicts, then
// uploads the document and records the plan. On any error nothing is
// persisted and the session keeps its answers.
func (p *Pipeline) Submit(ctx context.Context, sess *session.Session, teacher model.Teacher) (*Result, error) {
	form := sess.Form()

	// 1. Validate before any side effect
	if err := p.validate(form, sess.Entries(), teacher); err != nil {
		p.metrics.Submission(metrics.ResultValidationError)
		return nil, err
	}

	// 2. Backfill verdicts
	notices, err := p.backfill(ctx, sess)
	if err != nil {
		return nil, err
	}

	// 3. Build the payload and summary
	answers := BuildAnswers(sess.Entries())
	summary := model.Summarize(answers)
	if summary.Total() != len(answers) {
		return nil, fmt.Errorf("summary counts %d of %d answers", summary.Total(), len(answers))
	}

	// 4. Render
	doc := pdf.Encode(BuildLines(form, teacher, answers))
	p.metrics.DocumentSize(len(doc))

	// 5. Upload
	now := p.now()
	path := DocumentPath(teacher.UID, form.Name, now)
	pdfURL, err := p.blobs.Put(ctx, path, doc, contentType)
	if err != nil {
		p.metrics.Submission(metrics.ResultUploadError)
		return nil, &model.UploadError{Path: path, Err: err}
	}

	// 6. Persist
	plan := &model.Plan{
		ID:           p.newID(),
		FormID:       form.ID,
		FormName:     form.Name,
		Session:      form.Session,
		Answers:      answers,
		Summary:      summary,
		Status:       model.ReviewSubmitted,
		TeacherUID:   teacher.UID,
		TeacherEmail: teacher.Email,
		TeacherName:  teacherName(teacher),
		PDFPath:      path,
		PDFURL:       pdfURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.plans.CreatePlan(ctx, plan); err != nil {
		p.metrics.Submission(metrics.ResultStoreError)
		if derr := p.blobs.Delete(context.WithoutCancel(ctx), path); derr != nil {
			p.logger.Warnf("orphan document %s not removed: %v", path, derr)
		}
		return nil, fmt.Errorf("save plan: %w", err)
	}

	// 7. Done
	sess.Reset()
	p.metrics.Submission(metrics.ResultSubmitted)
	p.logger.Infof("plan %s submitted (%d conforme, %d à améliorer, %d non conforme)",
		plan.ID, summary.Conforme, summary.Ameliorer, summary.NonConforme)

	return &Result{Plan: plan, Document: doc, Notices: notices}, nil
}

func (p *Pipeline) validate(form model.Form, entries []session.Entry, teacher model.Teacher) error {
	if len(form.Questions) == 0 {
		verr := model.NewValidationError("submission")
		verr.AddError(msgNoActiveForm)
		return verr
	}
	if len(form.Questions) < p.minQuestions {
		verr := model.NewValidationError("submission")
		verr.AddError(fmt.Sprintf("le formulaire doit contenir au moins %d questions", p.minQuestions))
		return verr
	}

	var missing []string
	for _, e := range entries {
		if !e.Answered() {
			missing = append(missing, e.Question.ID)
		}
	}
	if len(missing) > 0 {
		verr := model.NewValidationError("submission")
		verr.AddError(fmt.Sprintf("%s (%s)", msgUnanswered, strings.Join(missing, ", ")))
		return verr
	}

	return forms.ValidateTeacher(teacher)
}

// backfill evaluates every answer whose verdict is missing or stale. Each
// answer falls back independently; results are keyed by question id.
func (p *Pipeline) backfill(ctx context.Context, sess *session.Session) ([]string, error) {
	remote := p.evaluator.RemoteAvailable()

	pending := make(map[string]session.Entry)
	var ids []string
	for _, e := range sess.Entries() {
		if evaluate.NeedsReevaluation(e.Verdict, remote) {
			pending[e.Question.ID] = e
			ids = append(ids, e.Question.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	p.logger.Debugf("evaluating %d answer(s) before submission", len(ids))

	outcomes, errs := worker.Collect(ctx, p.workers, ids, func(ctx context.Context, id string) (evaluate.Outcome, error) {
		in := pending[id].Input()
		in.Response = strings.TrimSpace(in.Response)
		return p.evaluator.Evaluate(ctx, in), nil
	})
	if len(errs) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluate answers: %w", err)
		}
		for _, id := range ids {
			if err, ok := errs[id]; ok {
				return nil, fmt.Errorf("evaluate answer %s: %w", id, err)
			}
		}
	}

	var notices []string
	for _, id := range ids {
		out := outcomes[id]
		sess.SetVerdict(id, pending[id].Response, out.Verdict)
		if out.Notice != "" {
			notices = append(notices, fmt.Sprintf("%s : %s", id, out.Notice))
		}
	}
	return notices, nil
}

func teacherName(t model.Teacher) string {
	if name := strings.TrimSpace(t.DisplayName); name != "" {
		return name
	}
	return "Enseignant"
}
