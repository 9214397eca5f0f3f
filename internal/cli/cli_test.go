package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/plancours/internal/model"
)

// isolate points configuration, stores and credentials at a temp directory
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PLANCOURS_STORE_DIR", filepath.Join(dir, "data"))
	t.Setenv("PLANCOURS_STORE_BLOB_DIR", filepath.Join(dir, "blobs"))
	t.Setenv("PLANCOURS_CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("PLANCOURS_FORMS_MIN_QUESTIONS", "1")
	for _, name := range apiKeyEnv {
		t.Setenv(name, "")
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "plancours "+Version+"\n", out)
}

func TestEvaluate_LocalJSON(t *testing.T) {
	dir := isolate(t)
	metricsFile := filepath.Join(dir, "plancours.prom")
	t.Setenv("PLANCOURS_METRICS_FILE", metricsFile)

	response := strings.Repeat("Le cours vise la maîtrise des outils. ", 3)
	out, _, err := execute(t, "evaluate", "--local", "--json",
		"--question", "Décrivez les préalables",
		"--rule", "préalables évaluation",
		"--response", response,
	)
	require.NoError(t, err)

	var got verdictOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, model.StatusAmeliorer, got.Status)
	assert.Equal(t, []string{"préalables"}, got.Highlights)
	assert.Equal(t, model.EngineHeuristic, got.Engine)
	assert.Empty(t, got.Notice)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `plancours_evaluations_total{engine="heuristique",status="À améliorer"}`)
}

func TestPDFEncodeAndInspect(t *testing.T) {
	dir := isolate(t)
	in := writeFile(t, dir, "plan.txt", "Plan : Automne\nSession : (2024)\n")
	pdfPath := filepath.Join(dir, "plan.pdf")

	_, _, err := execute(t, "pdf", "encode", "--in", in, "--out", pdfPath)
	require.NoError(t, err)

	out, _, err := execute(t, "pdf", "inspect", pdfPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Pages:   1")
	assert.Contains(t, out, "Plan : Automne\n")
	assert.Contains(t, out, "Session : (2024)\n")
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{""}, splitLines("\n"))
	assert.Equal(t, []string{""}, splitLines("\r\n"))
	assert.Equal(t, []string{"", ""}, splitLines("\n\n"))
	assert.Equal(t, []string{"a", "", "b"}, splitLines("a\r\n\nb\n"))
}

func TestSubmit_NoActiveForm(t *testing.T) {
	dir := isolate(t)
	answers := writeFile(t, dir, "answers.yaml", "answers:\n  q1: texte\n")

	_, _, err := execute(t, "submit", "--answers", answers, "--teacher-uid", "u-1")
	require.Error(t, err)
	assert.Equal(t, msgNoActiveForm, err.Error())
}

func TestPublishSubmitReview(t *testing.T) {
	dir := isolate(t)

	formPath := writeFile(t, dir, "form.yaml", `name: Plan de cours
session: Automne 2024
questions:
  - id: objectifs
    text: Décrivez les objectifs du cours.
    rule: objectifs évaluation
  - id: preal
    text: Quels sont les préalables ?
`)
	out, _, err := execute(t, "form", "publish", formPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Published Plan de cours")

	long := strings.Repeat("Les objectifs et l'évaluation sont décrits en détail ici. ", 3)
	answersPath := writeFile(t, dir, "answers.yaml", `teacher:
  uid: u-42
  email: prof@cegep.qc.ca
  displayName: Marie Tremblay
answers:
  objectifs: "`+long+`"
  preal: Aucun.
`)
	pdfPath := filepath.Join(dir, "copie.pdf")
	out, _, err = execute(t, "submit", "--answers", answersPath, "--teacher-uid", "u-42", "--pdf", pdfPath)
	require.NoError(t, err)
	assert.Contains(t, out, msgSubmitted)

	doc, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-1.4")))

	out, _, err = execute(t, "plans", "list", "--json", "--teacher", "TREMBLAY")
	require.NoError(t, err)
	var plans []model.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &plans))
	require.Len(t, plans, 1)
	plan := plans[0]
	assert.Equal(t, model.ReviewSubmitted, plan.Status)
	assert.Equal(t, 1, plan.Summary.Conforme)
	assert.Equal(t, 1, plan.Summary.Ameliorer)
	assert.True(t, strings.HasPrefix(plan.PDFPath, "plans/u-42/"))

	out, _, err = execute(t, "plans", "review", plan.ID, "--decision", "corrections", "--comment", "Préciser.")
	require.NoError(t, err)
	assert.Contains(t, out, "À corriger (by Coordonnateur)")
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "config", "init")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".plancours", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "min_questions: 10")
	assert.Contains(t, string(data), "requests_per_second: 2")

	_, _, err = execute(t, "config", "init")
	assert.Error(t, err, "an existing file is not overwritten")
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****", maskKey("short"))
	assert.Equal(t, "sk-a…wxyz", maskKey("sk-abcdefghijklmnopqrstuvwxyz"))
}
