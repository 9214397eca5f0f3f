package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/plancours/internal/evaluate"
	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/pipeline"
	"github.com/ppiankov/plancours/internal/session"
	"github.com/ppiankov/plancours/internal/store"
)

const (
	msgSubmitted    = "Plan envoyé pour validation. Vous recevrez un retour bientôt."
	msgSubmitFailed = "Impossible de soumettre le plan, réessayez."
	msgNoActiveForm = "Aucun formulaire actif n'est disponible."
)

var (
	answersFile   string
	teacherUID    string
	teacherEmail  string
	teacherName   string
	submitTimeout time.Duration
	submitPDF     string
	submitWorkers int
)

// answersDoc is the answers file read by submit
type answersDoc struct {
	// Form selects a saved form; empty means the active one
	Form    string            `yaml:"form,omitempty"`
	Teacher model.Teacher     `yaml:"teacher,omitempty"`
	Answers map[string]string `yaml:"answers"`
}

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Answer the active form and submit the plan",
	Long: `Submit fills a session with the answers of a YAML file and submits it:
- Every question of the form must have a non-empty answer
- Answers without an up-to-date verdict are graded in parallel
- A PDF of the plan is stored and the plan is recorded for review

Answers file:
  teacher:
    uid: u-123
    email: prof@cegep.qc.ca
  answers:
    objectifs: |
      Les objectifs du cours sont ...

Example:
  plancours submit --answers answers.yaml
  plancours submit --answers answers.yaml --teacher-uid u-123 --teacher-email prof@cegep.qc.ca --pdf plan.pdf`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&answersFile, "answers", "", "answers YAML file (required)")
	submitCmd.Flags().StringVar(&teacherUID, "teacher-uid", "", "teacher identifier (overrides the answers file)")
	submitCmd.Flags().StringVar(&teacherEmail, "teacher-email", "", "teacher e-mail (overrides the answers file)")
	submitCmd.Flags().StringVar(&teacherName, "teacher-name", "", "teacher display name (overrides the answers file)")
	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", 5*time.Minute, "overall submission timeout")
	submitCmd.Flags().StringVar(&submitPDF, "pdf", "", "also write the generated PDF to this path")
	submitCmd.Flags().IntVar(&submitWorkers, "concurrency", 0, "answers graded in parallel (default from config)")
	_ = submitCmd.MarkFlagRequired("answers")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if submitWorkers > 0 {
		cfg.Concurrency.Workers = submitWorkers
	}

	var doc answersDoc
	if err := readYAML(answersFile, &doc); err != nil {
		return err
	}
	teacher := doc.Teacher
	if teacherUID != "" {
		teacher.UID = teacherUID
	}
	if teacherEmail != "" {
		teacher.Email = teacherEmail
	}
	if teacherName != "" {
		teacher.DisplayName = teacherName
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), submitTimeout)
	defer cancel()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	blobs, err := store.OpenBlobs(cfg.Store)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	form, err := loadForm(ctx, st, doc.Form)
	if err != nil {
		return err
	}

	sess := session.New(*form)
	for id, text := range doc.Answers {
		if err := sess.SetResponse(id, text); err != nil {
			return fmt.Errorf("answer %q: %w", id, err)
		}
	}

	logger := newLogger(cfg)
	evaluator, err := evaluate.New(cfg, evaluate.WithMetrics(recorder), evaluate.WithLogger(logger))
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Plancours Submission\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Form:        %s (%s)\n", form.Name, form.Session)
	fmt.Fprintf(stderr, "  Questions:   %d (%d%% answered)\n", len(form.Questions), sess.Progress())
	fmt.Fprintf(stderr, "  Teacher:     %s\n", teacher.Label())
	fmt.Fprintf(stderr, "  Evaluation:  %s\n", evaluationMode(cfg))
	fmt.Fprintf(stderr, "  Workers:     %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "\n")

	p := pipeline.NewPipeline(cfg, evaluator, st, blobs,
		pipeline.WithMetrics(recorder),
		pipeline.WithLogger(logger),
	)

	result, err := p.Submit(ctx, sess, teacher)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			printValidation(stderr, err)
			return err
		}
		fmt.Fprintf(stderr, "✗ %s\n", msgSubmitFailed)
		return err
	}

	for _, notice := range result.Notices {
		fmt.Fprintf(stderr, "⚠️  %s\n", notice)
	}

	if submitPDF != "" {
		if err := os.WriteFile(submitPDF, result.Document, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", submitPDF, err)
		}
	}

	plan := result.Plan
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ %s\n", msgSubmitted)
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "  Plan:          %s\n", plan.ID)
	fmt.Fprintf(out, "  Conforme:      %d\n", plan.Summary.Conforme)
	fmt.Fprintf(out, "  À améliorer:   %d\n", plan.Summary.Ameliorer)
	fmt.Fprintf(out, "  Non conforme:  %d\n", plan.Summary.NonConforme)
	fmt.Fprintf(out, "  Document:      %s\n", plan.PDFURL)
	fmt.Fprintf(out, "\n")

	return nil
}

// loadForm returns the form with the given id, or the active form
func loadForm(ctx context.Context, st store.FormStore, id string) (*model.Form, error) {
	if id != "" {
		form, err := st.GetForm(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("form %s: %w", id, err)
		}
		return form, nil
	}

	form, err := st.ActiveForm(ctx)
	if errors.Is(err, model.ErrNoActiveForm) {
		return nil, errors.New(msgNoActiveForm)
	}
	if err != nil {
		return nil, fmt.Errorf("active form: %w", err)
	}
	return form, nil
}
