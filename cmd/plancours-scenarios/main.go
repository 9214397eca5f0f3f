// Walkthrough of the local grading rules and the submission flow.
// Runs entirely in memory with the heuristic engine.
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/plancours/internal/evaluate"
	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/pdf"
	"github.com/ppiankov/plancours/internal/pipeline"
	"github.com/ppiankov/plancours/internal/session"
	"github.com/ppiankov/plancours/internal/store"
)

type scenario struct {
	name     string
	question string
	rule     string
	response string
}

func main() {
	fmt.Println("=== Plancours Grading Scenarios ===")
	fmt.Println()

	scenarios := []scenario{
		{
			name:     "Empty answer",
			question: "Décrivez vos objectifs",
			rule:     "objectifs évaluation",
			response: "",
		},
		{
			name:     "Missing keyword",
			question: "Quels sont les préalables ?",
			rule:     "préalables évaluation",
			response: truncate(strings.Repeat("Le cours demande une base solide. ", 3), 85),
		},
		{
			name:     "Complete answer",
			question: "Décrivez vos objectifs",
			rule:     "objectifs évaluation",
			response: truncate(strings.Repeat("Les objectifs du cours et leur évaluation sont détaillés. ", 4), 200),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	evaluator := evaluate.WithFallback(nil)

	for _, sc := range scenarios {
		fmt.Printf("Scenario: %s\n", sc.name)
		fmt.Println(strings.Repeat("-", 60))

		out := evaluator.Evaluate(ctx, evaluate.Input{Question: sc.question, Rule: sc.rule, Response: sc.response})
		v := out.Verdict
		fmt.Printf("  Response:   %d characters\n", len([]rune(sc.response)))
		fmt.Printf("  Status:     %s\n", v.Status)
		fmt.Printf("  Feedback:   %s\n", v.Feedback)
		if len(v.Highlights) > 0 {
			fmt.Printf("  Highlights: %s\n", strings.Join(v.Highlights, ", "))
		}

		// Submit a form whose only question is this one
		form := model.Form{
			ID:        "demo",
			Name:      "Démonstration",
			Session:   "Automne 2024",
			Questions: []model.Question{{ID: "q1", Text: sc.question, Rule: sc.rule}},
		}
		sess := session.New(form)
		_ = sess.SetResponse("q1", sc.response)

		blobs := store.NewMemoryBlobStore()
		p := pipeline.NewPipeline(model.DefaultConfig(), evaluator, store.NewMemoryStore(), blobs)

		result, err := p.Submit(ctx, sess, model.Teacher{UID: "demo", Email: "prof@example.org"})
		var verr *model.ValidationError
		switch {
		case errors.As(err, &verr):
			fmt.Printf("  ✗ Submission rejected: %s\n", strings.Join(verr.Errors, "; "))
		case err != nil:
			fmt.Printf("  ✗ Submission failed: %v\n", err)
		default:
			info, err := pdf.Inspect(result.Document)
			if err != nil {
				fmt.Printf("  ✗ Document check failed: %v\n", err)
				break
			}
			fmt.Printf("  ✓ Submitted %s (%d bytes, %d lines)\n", result.Plan.PDFPath, len(result.Document), len(info.Lines))
		}

		fmt.Println()
	}

	fmt.Println("=== Scenarios Complete ===")
}

// truncate keeps the first n characters of s
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
