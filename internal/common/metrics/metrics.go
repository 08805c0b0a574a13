package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission lifecycle
var (
	CareerSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_submissions_total",
			Help: "Form submissions by outcome (invalid, succeeded, failed, rejected)",
		},
		[]string{"outcome"},
	)

	CareerPredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "career_prediction_duration_seconds",
			Help:    "Time spent waiting for the prediction service",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)

	CareerValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_validation_errors_total",
			Help: "Validation messages raised per field",
		},
		[]string{"field"},
	)

	CareerShares = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_shares_total",
			Help: "Share attempts by channel and status",
		},
		[]string{"channel", "status"},
	)
)

// Workers
var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
