// Package session holds a teacher's in-progress answers for one form.
package session

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/ppiankov/plancours/internal/evaluate"
	"github.com/ppiankov/plancours/internal/model"
)

const msgAnalyzeEmpty = "Veuillez écrire votre réponse avant d'analyser."

// Analyzer evaluates one response and never fails
type Analyzer interface {
	Evaluate(ctx context.Context, in evaluate.Input) evaluate.Outcome
}

// Entry is the state of one question
type Entry struct {
	Question model.Question
	Response string
	Verdict  *model.Verdict
}

// Answered reports whether the trimmed response is non-empty
func (e Entry) Answered() bool {
	return strings.TrimSpace(e.Response) != ""
}

// Input returns the evaluation input for this entry
func (e Entry) Input() evaluate.Input {
	return evaluate.Input{
		Question: e.Question.Text,
		Rule:     e.Question.Rule,
		Response: e.Response,
	}
}

type entry struct {
	response string
	verdict  *model.Verdict
}

// Session maps question ids to answers for a single form. Switching forms
// means creating a new Session.
type Session struct {
	mu      sync.RWMutex
	form    model.Form
	entries map[string]*entry
}

// New starts an empty session for form
func New(form model.Form) *Session {
	form.Questions = append([]model.Question(nil), form.Questions...)
	s := &Session{form: form}
	s.Reset()
	return s
}

// Form returns the form being answered
func (s *Session) Form() model.Form {
	return s.form
}

// Reset drops every response and verdict
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry, len(s.form.Questions))
	for _, q := range s.form.Questions {
		s.entries[q.ID] = &entry{}
	}
}

// SetResponse stores text for a question. A changed response invalidates its verdict.
func (s *Session) SetResponse(questionID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[questionID]
	if !ok {
		return fmt.Errorf("question %q: %w", questionID, model.ErrNotFound)
	}
	if e.response != text {
		e.response = text
		e.verdict = nil
	}
	return nil
}

// Response returns the stored text for a question
func (s *Session) Response(questionID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[questionID]
	if !ok {
		return "", false
	}
	return e.response, true
}

// Verdict returns a copy of the current verdict, nil when there is none
func (s *Session) Verdict(questionID string) *model.Verdict {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[questionID]
	if !ok || e.verdict == nil {
		return nil
	}
	v := *e.verdict
	return &v
}

// SetVerdict records v if the response it was computed for is still current.
// It reports whether the verdict was stored.
func (s *Session) SetVerdict(questionID, response string, v model.Verdict) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[questionID]
	if !ok || e.response != response {
		return false
	}
	e.verdict = &v
	return true
}

// Analyze evaluates the current response of one question and stores the verdict
func (s *Session) Analyze(ctx context.Context, questionID string, a Analyzer) (evaluate.Outcome, error) {
	q, ok := s.form.Question(questionID)
	if !ok {
		return evaluate.Outcome{}, fmt.Errorf("question %q: %w", questionID, model.ErrNotFound)
	}

	response, _ := s.Response(questionID)
	if strings.TrimSpace(response) == "" {
		verr := model.NewValidationError("analysis")
		verr.AddError(msgAnalyzeEmpty)
		return evaluate.Outcome{}, verr
	}

	out := a.Evaluate(ctx, evaluate.Input{
		Question: q.Text,
		Rule:     q.Rule,
		Response: response,
	})
	s.SetVerdict(questionID, response, out.Verdict)
	return out, nil
}

// Progress is the rounded percentage of questions with a non-empty answer
func (s *Session) Progress() int {
	total := len(s.form.Questions)
	if total == 0 {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	answered := 0
	for _, e := range s.entries {
		if strings.TrimSpace(e.response) != "" {
			answered++
		}
	}
	return int(math.Round(float64(answered) / float64(total) * 100))
}

// Entries returns a snapshot in form order
func (s *Session) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.form.Questions))
	for _, q := range s.form.Questions {
		e := s.entries[q.ID]
		item := Entry{Question: q, Response: e.response}
		if e.verdict != nil {
			v := *e.verdict
			item.Verdict = &v
		}
		out = append(out, item)
	}
	return out
}
