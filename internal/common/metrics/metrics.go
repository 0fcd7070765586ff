// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Total number of form submissions by transport and outcome",
		},
		[]string{"transport", "status"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "form_submission_duration_seconds",
			Help:    "Duration of the transactional submission write in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	SubmissionFieldsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "form_submission_fields_written_total",
			Help: "Total number of form field rows created",
		},
	)

	UnmatchedValues = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "form_submission_unmatched_values_total",
			Help: "Total number of submitted values dropped because no field matched their key",
		},
	)

	SinkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submission_sink_failures_total",
			Help: "Total number of failed post-commit sink deliveries",
		},
		[]string{"sink"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
