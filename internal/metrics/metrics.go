// Package metrics counts evaluations, fallbacks and submissions with Prometheus.
//
// Metrics live in a private registry so several recorders can coexist in one
// process (tests, embedded use). The CLI exports them once per run through the
// node-exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Submission results
const (
	ResultSubmitted       = "submitted"
	ResultValidationError = "validation_error"
	ResultUploadError     = "upload_error"
	ResultStoreError      = "store_error"
)

// Recorder holds the plancours collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	evaluations        *prometheus.CounterVec
	evaluationFailures *prometheus.CounterVec
	fallbacks          prometheus.Counter
	submissions        *prometheus.CounterVec
	documentBytes      prometheus.Histogram
}

// New creates a Recorder and registers its collectors in a fresh registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plancours_evaluations_total",
				Help: "Verdicts produced, by engine and status.",
			},
			[]string{"engine", "status"},
		),
		evaluationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plancours_evaluation_failures_total",
				Help: "Evaluation attempts that returned an error, by engine.",
			},
			[]string{"engine"},
		),
		fallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "plancours_fallbacks_total",
				Help: "Remote evaluations replaced by the local heuristic.",
			},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plancours_submissions_total",
				Help: "Submission attempts, by result.",
			},
			[]string{"result"},
		),
		documentBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "plancours_document_bytes",
				Help:    "Size of generated plan documents.",
				Buckets: prometheus.ExponentialBuckets(512, 2, 10),
			},
		),
	}

	r.registry.MustRegister(
		r.evaluations,
		r.evaluationFailures,
		r.fallbacks,
		r.submissions,
		r.documentBytes,
	)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Evaluation counts one verdict
func (r *Recorder) Evaluation(engine, status string) {
	if r == nil {
		return
	}
	r.evaluations.WithLabelValues(engine, status).Inc()
}

// EvaluationFailure counts one failed evaluation attempt
func (r *Recorder) EvaluationFailure(engine string) {
	if r == nil {
		return
	}
	r.evaluationFailures.WithLabelValues(engine).Inc()
}

// Fallback counts one heuristic substitution
func (r *Recorder) Fallback() {
	if r == nil {
		return
	}
	r.fallbacks.Inc()
}

// Submission counts one submission attempt
func (r *Recorder) Submission(result string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(result).Inc()
}

// DocumentSize records the size of an encoded document
func (r *Recorder) DocumentSize(n int) {
	if r == nil {
		return
	}
	r.documentBytes.Observe(float64(n))
}

// WriteTextfile writes all metrics to path in the Prometheus text format
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
