// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TeamRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyst_team_runs_total",
			Help: "Total number of team runs by final status",
		},
		[]string{"status"},
	)

	TeamStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyst_team_stage_duration_seconds",
			Help:    "Duration of each team member stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"member", "status"},
	)

	IntentResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyst_intent_resolutions_total",
			Help: "Intent resolutions by outcome (single, multiple or error code)",
		},
		[]string{"outcome"},
	)

	SchemaCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyst_schema_cache_requests_total",
			Help: "Schema cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	QueryRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyst_query_rows",
			Help:    "Rows returned per generated survey query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"question_type"},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyst_llm_requests_total",
			Help: "Completion requests to the LLM endpoint by status",
		},
		[]string{"status"},
	)

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

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyst_api_requests_total",
			Help: "HTTP API requests by route and status code",
		},
		[]string{"route", "code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyst_api_request_duration_seconds",
			Help:    "HTTP API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
