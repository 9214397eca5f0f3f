// Package review lets coordinators list submitted plans and record decisions.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/store"
)

// defaultReviewer is recorded when the coordinator has no name or email
const defaultReviewer = "Coordonnateur"

// Filter narrows a plan listing. Empty fields match everything.
type Filter struct {
	// Teacher matches a substring of the teacher's email or name, ignoring case
	Teacher string

	Status model.ReviewStatus

	// Session matches the whole session label, ignoring case
	Session string
}

// Match reports whether p passes every filter
func (f Filter) Match(p model.Plan) bool {
	if t := strings.ToLower(strings.TrimSpace(f.Teacher)); t != "" {
		if !strings.Contains(strings.ToLower(p.TeacherEmail), t) &&
			!strings.Contains(strings.ToLower(p.TeacherName), t) {
			return false
		}
	}
	if f.Status != "" && effectiveStatus(p) != f.Status {
		return false
	}
	if s := strings.TrimSpace(f.Session); s != "" && !strings.EqualFold(p.Session, s) {
		return false
	}
	return true
}

// Apply keeps the plans matching f, preserving order
func (f Filter) Apply(plans []model.Plan) []model.Plan {
	out := make([]model.Plan, 0, len(plans))
	for _, p := range plans {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// ParseDecision accepts the stored value or its label ("approuve", "Approuvé")
func ParseDecision(s string) (model.ReviewStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approuve", "approuvé", "approve":
		return model.ReviewApproved, nil
	case "corrections", "à corriger", "a corriger":
		return model.ReviewCorrections, nil
	}
	return "", fmt.Errorf("unknown decision %q (expected approuve or corrections)", s)
}

// Service applies coordinator decisions to stored plans
type Service struct {
	Plans store.PlanStore
	Now   func() time.Time
}

// List returns the stored plans matching f, newest first
func (s *Service) List(ctx context.Context, f Filter) ([]model.Plan, error) {
	plans, err := s.Plans.ListPlans(ctx, store.PlanQuery{})
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return f.Apply(plans), nil
}

// Decide records a decision with an optional comment
func (s *Service) Decide(ctx context.Context, planID string, decision model.ReviewStatus, comment string, reviewer model.Teacher) (*model.Plan, error) {
	if decision != model.ReviewApproved && decision != model.ReviewCorrections {
		verr := model.NewValidationError("review")
		verr.AddError(fmt.Sprintf("décision inconnue : %q", decision))
		return nil, verr
	}

	plan, err := s.Plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	plan.Status = decision
	plan.ReviewComment = strings.TrimSpace(comment)
	plan.ReviewerName = reviewerName(reviewer)
	plan.UpdatedAt = s.now()

	if err := s.Plans.UpdatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return plan, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func reviewerName(t model.Teacher) string {
	if label := strings.TrimSpace(t.Label()); label != "" {
		return label
	}
	return defaultReviewer
}

// effectiveStatus treats a missing status as submitted
func effectiveStatus(p model.Plan) model.ReviewStatus {
	if p.Status == "" {
		return model.ReviewSubmitted
	}
	return p.Status
}
