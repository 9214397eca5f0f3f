package model

import "time"

// Plan is the submitted course plan record.
// Answers follow the form's question order; the record is never edited by the
// submission flow. Review fields are appended later by a coordinator.
type Plan struct {
	ID       string `json:"id"`
	FormID   string `json:"formId"`
	FormName string `json:"formName"`
	Session  string `json:"session"`

	Answers []PlanAnswer `json:"answers"`
	Summary Summary      `json:"aiSummary"`

	Status        ReviewStatus `json:"status"`
	ReviewComment string       `json:"reviewComment,omitempty"`
	ReviewerName  string       `json:"reviewerName,omitempty"`

	TeacherUID   string `json:"teacherUid"`
	TeacherEmail string `json:"teacherEmail"`
	TeacherName  string `json:"teacherName"`

	PDFPath string `json:"pdfPath"`
	PDFURL  string `json:"pdfUrl"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlanAnswer is one answered question with its verdict
type PlanAnswer struct {
	QuestionID string   `json:"questionId"`
	Prompt     string   `json:"prompt"`
	Rule       string   `json:"rule,omitempty"`
	Response   string   `json:"response"`
	Status     Status   `json:"aiStatus"`
	Feedback   string   `json:"aiFeedback"`
	Highlights []string `json:"aiHighlights"`
	Engine     Engine   `json:"aiEngine"`
	Model      string   `json:"aiModel"`
}

// Verdict returns the verdict fields of the answer
func (a PlanAnswer) Verdict() Verdict {
	return Verdict{
		Status:     a.Status,
		Feedback:   a.Feedback,
		Highlights: a.Highlights,
		Engine:     a.Engine,
		Model:      a.Model,
	}
}

// ReviewStatus is the coordinator-side lifecycle of a plan
type ReviewStatus string

const (
	ReviewSubmitted   ReviewStatus = "soumis"
	ReviewApproved    ReviewStatus = "approuve"
	ReviewCorrections ReviewStatus = "corrections"
)

// Label returns the human label shown in listings
func (s ReviewStatus) Label() string {
	switch s {
	case ReviewApproved:
		return "Approuvé"
	case ReviewCorrections:
		return "À corriger"
	default:
		return "Soumis"
	}
}

// Summarize buckets the answers by status
func Summarize(answers []PlanAnswer) Summary {
	var s Summary
	for _, a := range answers {
		s.Add(a.Status)
	}
	return s
}
