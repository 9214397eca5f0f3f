package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/plancours/internal/evaluate"
	"github.com/ppiankov/plancours/internal/model"
)

var (
	evalQuestion     string
	evalRule         string
	evalResponse     string
	evalResponseFile string
	evalJSON         bool
	evalLocal        bool
	evalTimeout      time.Duration
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Grade one answer against its question and rule",
	Long: `Evaluate grades a single answer and prints the verdict:
- Conforme, À améliorer or Non conforme
- A short feedback sentence
- Highlighted elements the answer should mention

The remote model is used when an API key is configured; on any remote
failure the local rules produce the verdict and a notice is printed.

Example:
  plancours evaluate --question "Décrivez vos objectifs" --rule "objectifs évaluation" --response "..."
  plancours evaluate --question "Préalables" --response-file answer.txt --json
  echo "..." | plancours evaluate --question "Préalables" --response-file -`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalQuestion, "question", "", "question text (required)")
	evaluateCmd.Flags().StringVar(&evalRule, "rule", "", "validation rule for the question")
	evaluateCmd.Flags().StringVar(&evalResponse, "response", "", "answer text")
	evaluateCmd.Flags().StringVar(&evalResponseFile, "response-file", "", "read the answer from a file (- for stdin)")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "print the verdict as JSON")
	evaluateCmd.Flags().BoolVar(&evalLocal, "local", false, "use local rules even if an API key is configured")
	evaluateCmd.Flags().DurationVar(&evalTimeout, "timeout", time.Minute, "overall evaluation timeout")
	_ = evaluateCmd.MarkFlagRequired("question")
	evaluateCmd.MarkFlagsMutuallyExclusive("response", "response-file")
}

type verdictOutput struct {
	model.Verdict
	Notice string `json:"notice,omitempty"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if evalLocal {
		cfg.LLM.APIKey = ""
	}

	response := evalResponse
	if evalResponseFile != "" {
		response, err = readText(cmd.InOrStdin(), evalResponseFile)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), evalTimeout)
	defer cancel()

	logger := newLogger(cfg)
	evaluator, err := evaluate.New(cfg, evaluate.WithMetrics(recorder), evaluate.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Debugf("evaluating with %s", evaluator.Engine())

	out := evaluator.Evaluate(ctx, evaluate.Input{
		Question: evalQuestion,
		Rule:     evalRule,
		Response: response,
	})

	if out.Notice != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %s\n", out.Notice)
	}

	w := cmd.OutOrStdout()
	if evalJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(verdictOutput{Verdict: out.Verdict, Notice: out.Notice})
	}

	printVerdict(w, out.Verdict)
	return nil
}

func printVerdict(w io.Writer, v model.Verdict) {
	fmt.Fprintf(w, "Statut :    %s\n", v.Status)
	fmt.Fprintf(w, "Retour :    %s\n", v.Feedback)
	if len(v.Highlights) > 0 {
		fmt.Fprintf(w, "À mentionner : %s\n", strings.Join(v.Highlights, ", "))
	}
	fmt.Fprintf(w, "Moteur :    %s (%s)\n", v.Engine, v.Model)
}

// readText reads a whole file, or stdin when path is "-"
func readText(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
