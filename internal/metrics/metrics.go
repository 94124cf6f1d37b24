package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Run metrics. Runs start before routing, so the started counter has
	// no route label; completion carries it.
	RunsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_runs_started_total",
			Help: "Total number of research runs started",
		},
	)

	RunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_runs_completed_total",
			Help: "Total number of research runs completed",
		},
		[]string{"route", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_run_duration_seconds",
			Help:    "Research run duration in seconds",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"route"},
	)

	// Stage metrics
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_stage_duration_seconds",
			Help:    "Per-stage duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// Search metrics
	SearchesExecuted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_searches_executed_total",
			Help: "Total number of search units executed",
		},
	)

	SearchesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_searches_failed_total",
			Help: "Total number of search units that failed and were dropped",
		},
	)

	// Revision loop metrics
	RevisionAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_revision_attempts",
			Help:    "Writer attempts per run",
			Buckets: []float64{1, 2},
		},
	)

	EvaluationVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_evaluation_verdicts_total",
			Help: "Evaluator verdicts by acceptability",
		},
		[]string{"verdict"},
	)

	// Clarification metrics
	ClarifyingQuestions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_clarifying_questions_total",
			Help: "Total number of clarifying questions generated",
		},
	)

	// Capability metrics
	CapabilityCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_capability_calls_total",
			Help: "Calls to external capabilities",
		},
		[]string{"capability", "status"},
	)
)
