package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/session"
)

func TestBuildLines(t *testing.T) {
	form := model.Form{Name: "", Session: ""}
	teacher := model.Teacher{Email: "prof@cegep.qc.ca"}
	answers := []model.PlanAnswer{
		{Prompt: "Objectifs", Response: "Premier\nSecond", Status: model.StatusConforme, Feedback: "Bien."},
		{Prompt: "Évaluation", Response: "Examen", Status: model.StatusAmeliorer},
	}

	want := []string{
		"Plan : Sans nom",
		"Enseignant : prof@cegep.qc.ca",
		"Session : N/D",
		"",
		"1. Objectifs",
		"Réponse : Premier",
		"Second",
		"Validation : Conforme – Bien.",
		"",
		"2. Évaluation",
		"Réponse : Examen",
		"Validation : À améliorer – N/A",
		"",
	}
	assert.Equal(t, want, BuildLines(form, teacher, answers))
}

func TestBuildAnswers(t *testing.T) {
	entries := []session.Entry{
		{
			Question: model.Question{ID: "q1", Text: "Objectifs", Rule: "objectifs"},
			Response: "  texte  ",
			Verdict:  &model.Verdict{Status: model.StatusConforme, Feedback: "Bien.", Engine: model.EngineHeuristic},
		},
	}
	answers := BuildAnswers(entries)
	assert.Len(t, answers, 1)
	assert.Equal(t, "texte", answers[0].Response)
	assert.Equal(t, "objectifs", answers[0].Rule)
	assert.NotNil(t, answers[0].Highlights)
}

func TestDocumentPath(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "plans/u1/1700000000123-plan-hiver-2025.pdf", DocumentPath("u1", "Plan Hiver 2025", at))
	assert.Equal(t, "plans/a_b/1700000000123-plan.pdf", DocumentPath("a/b", "", at))
}
