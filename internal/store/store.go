// Package store persists forms and submitted plans, and the generated
// documents in a write-once blob store.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/ppiankov/plancours/internal/model"
)

// ErrBlobExists is returned when a blob path is already taken
var ErrBlobExists = errors.New("blob already exists")

// FormStore keeps questionnaire definitions
type FormStore interface {
	// SaveForm inserts or replaces a form by id
	SaveForm(ctx context.Context, form *model.Form) error
	GetForm(ctx context.Context, id string) (*model.Form, error)
	ListForms(ctx context.Context) ([]model.Form, error)

	// ActiveForm returns the published form or model.ErrNoActiveForm
	ActiveForm(ctx context.Context) (*model.Form, error)

	// SetActiveForm publishes id and unpublishes every other form
	SetActiveForm(ctx context.Context, id string) error
}

// PlanQuery narrows ListPlans. Empty fields match everything.
type PlanQuery struct {
	TeacherUID string
}

// PlanStore keeps submitted plans
type PlanStore interface {
	// CreatePlan inserts a new plan; the id must be unused
	CreatePlan(ctx context.Context, plan *model.Plan) error
	GetPlan(ctx context.Context, id string) (*model.Plan, error)

	// UpdatePlan replaces an existing plan or returns model.ErrNotFound
	UpdatePlan(ctx context.Context, plan *model.Plan) error

	// ListPlans returns matching plans, newest first
	ListPlans(ctx context.Context, q PlanQuery) ([]model.Plan, error)
}

// Store is the document database
type Store interface {
	FormStore
	PlanStore
	Close() error
}

// BlobStore holds generated documents. Paths are write-once.
type BlobStore interface {
	// Put stores data at path and returns a URL for it
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)

	// Delete removes path; a missing path is not an error
	Delete(ctx context.Context, path string) error
}

func cloneForm(f *model.Form) *model.Form {
	c := *f
	c.Questions = append([]model.Question(nil), f.Questions...)
	return &c
}

func clonePlan(p *model.Plan) *model.Plan {
	c := *p
	c.Answers = make([]model.PlanAnswer, len(p.Answers))
	for i, a := range p.Answers {
		a.Highlights = append([]string(nil), a.Highlights...)
		c.Answers[i] = a
	}
	return &c
}

func (q PlanQuery) match(p *model.Plan) bool {
	return q.TeacherUID == "" || p.TeacherUID == q.TeacherUID
}

func sortPlans(plans []model.Plan) {
	sort.SliceStable(plans, func(i, j int) bool {
		if plans[i].CreatedAt.Equal(plans[j].CreatedAt) {
			return plans[i].ID > plans[j].ID
		}
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
}

func sortForms(forms []model.Form) {
	sort.SliceStable(forms, func(i, j int) bool {
		return forms[i].CreatedAt.After(forms[j].CreatedAt)
	})
}
