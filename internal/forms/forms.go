package forms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/store"
)

// Normalize trims every text field and assigns missing ids.
// CreatedAt is set once; UpdatedAt always moves to now.
func Normalize(form *model.Form, now time.Time) {
	form.Name = strings.TrimSpace(form.Name)
	form.Session = strings.TrimSpace(form.Session)
	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	for i := range form.Questions {
		q := &form.Questions[i]
		q.ID = strings.TrimSpace(q.ID)
		q.Text = strings.TrimSpace(q.Text)
		q.Rule = strings.TrimSpace(q.Rule)
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
	}
	if form.CreatedAt.IsZero() {
		form.CreatedAt = now
	}
	form.UpdatedAt = now
}

// Publisher saves forms and controls which one teachers answer
type Publisher struct {
	Store        store.FormStore
	MinQuestions int
	Now          func() time.Time
}

func (p *Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Save normalizes and validates form, then stores it. A new form is saved
// inactive.
func (p *Publisher) Save(ctx context.Context, form *model.Form) error {
	isNew := form.ID == ""
	Normalize(form, p.now())
	if isNew {
		form.IsActive = false
	}
	if err := Validate(form, p.MinQuestions); err != nil {
		return err
	}
	if err := p.Store.SaveForm(ctx, form); err != nil {
		return fmt.Errorf("save form: %w", err)
	}
	return nil
}

// Activate makes id the only active form
func (p *Publisher) Activate(ctx context.Context, id string) error {
	if err := p.Store.SetActiveForm(ctx, id); err != nil {
		return fmt.Errorf("activate form: %w", err)
	}
	return nil
}

// Publish saves form and activates it
func (p *Publisher) Publish(ctx context.Context, form *model.Form) error {
	if err := p.Save(ctx, form); err != nil {
		return err
	}
	if err := p.Activate(ctx, form.ID); err != nil {
		return err
	}
	form.IsActive = true
	return nil
}
