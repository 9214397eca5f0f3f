package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/session"
	"github.com/ppiankov/plancours/internal/util"
)

const maxSlugLength = 60

// BuildAnswers converts session entries into the submitted answer list.
// Entries without a verdict get an empty one; Submit backfills first.
func BuildAnswers(entries []session.Entry) []model.PlanAnswer {
	answers := make([]model.PlanAnswer, 0, len(entries))
	for _, e := range entries {
		a := model.PlanAnswer{
			QuestionID: e.Question.ID,
			Prompt:     e.Question.Text,
			Rule:       e.Question.Rule,
			Response:   strings.TrimSpace(e.Response),
			Highlights: []string{},
		}
		if v := e.Verdict; v != nil {
			a.Status = v.Status
			a.Feedback = v.Feedback
			a.Engine = v.Engine
			a.Model = v.Model
			if v.Highlights != nil {
				a.Highlights = v.Highlights
			}
		}
		answers = append(answers, a)
	}
	return answers
}

// BuildLines lays out the document text: a header block, then one block
// per answer separated by blank lines
func BuildLines(form model.Form, teacher model.Teacher, answers []model.PlanAnswer) []string {
	lines := []string{
		"Plan : " + orDefault(form.Name, "Sans nom"),
		"Enseignant : " + teacher.Label(),
		"Session : " + orDefault(form.Session, "N/D"),
		"",
	}
	for i, a := range answers {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, a.Prompt))
		for j, part := range strings.Split(strings.ReplaceAll(a.Response, "\r\n", "\n"), "\n") {
			if j == 0 {
				part = "Réponse : " + part
			}
			lines = append(lines, part)
		}
		lines = append(lines, fmt.Sprintf("Validation : %s – %s", a.Status, orDefault(a.Feedback, "N/A")))
		lines = append(lines, "")
	}
	return lines
}

// DocumentPath is the blob path of a plan document:
// plans/<uid>/<unix millis>-<slug of form name>.pdf
func DocumentPath(teacherUID, formName string, at time.Time) string {
	uid := strings.NewReplacer("/", "_", `\`, "_").Replace(teacherUID)
	return fmt.Sprintf("plans/%s/%d-%s.pdf", uid, at.UnixMilli(), util.Slug(formName, maxSlugLength))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
