package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.Evaluation("heuristique", "Conforme")
	r.Evaluation("heuristique", "Conforme")
	r.Evaluation("chatgpt", "À améliorer")
	r.EvaluationFailure("chatgpt")
	r.Fallback()
	r.Submission(ResultSubmitted)
	r.Submission(ResultValidationError)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.evaluations.WithLabelValues("heuristique", "Conforme")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.evaluations.WithLabelValues("chatgpt", "À améliorer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.evaluationFailures.WithLabelValues("chatgpt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fallbacks))
	assert.Equal(t, 2, testutil.CollectAndCount(r.submissions))
}

func TestRecorder_DocumentSize(t *testing.T) {
	r := New()
	r.DocumentSize(1200)
	assert.Equal(t, 1, testutil.CollectAndCount(r.documentBytes))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Evaluation("chatgpt", "Conforme")
		r.EvaluationFailure("chatgpt")
		r.Fallback()
		r.Submission(ResultSubmitted)
		r.DocumentSize(10)
	})
	assert.NoError(t, r.WriteTextfile("/nonexistent/metrics.prom"))
	assert.Nil(t, r.Registry())
}

func TestRecorder_Independent(t *testing.T) {
	a, b := New(), New()
	a.Fallback()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.fallbacks))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.Submission(ResultUploadError)

	path := filepath.Join(t.TempDir(), "plancours.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `plancours_submissions_total{result="upload_error"} 1`)
}
