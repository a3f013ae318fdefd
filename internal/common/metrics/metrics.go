// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

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

	MatchCandidatesEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_candidates_evaluated_total",
			Help: "Total number of candidate profiles scored by the matcher",
		},
		[]string{"outcome"},
	)

	MatchPoolCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_pool_cache_total",
			Help: "Candidate pool cache lookups by result",
		},
		[]string{"result"},
	)

	MarketSnapshotCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_snapshot_cache_total",
			Help: "Market snapshot cache lookups by result",
		},
		[]string{"result"},
	)
)
