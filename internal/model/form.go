package model

import (
	"strings"
	"time"
)

// Question is one prompt of a published form.
// ID is stable and unique within its form.
type Question struct {
	ID   string `json:"id" yaml:"id" validate:"notblank"`
	Text string `json:"text" yaml:"text" validate:"notblank"`
	Rule string `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// Form is a questionnaire template teachers answer
type Form struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name" validate:"notblank"`
	Session   string     `json:"session" yaml:"session" validate:"notblank"`
	Questions []Question `json:"questions" yaml:"questions" validate:"dive"`
	IsActive  bool       `json:"isActive" yaml:"isActive"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

// Question returns the question with the given id
func (f *Form) Question(id string) (Question, bool) {
	for _, q := range f.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Teacher is the identity attached to a submission.
// Values come from the identity provider and are opaque here.
type Teacher struct {
	UID         string `json:"uid" yaml:"uid" validate:"notblank"`
	Email       string `json:"email" yaml:"email" validate:"omitempty,email"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
}

// Label returns the name printed on documents: display name, else email
func (t Teacher) Label() string {
	if name := strings.TrimSpace(t.DisplayName); name != "" {
		return name
	}
	return t.Email
}
