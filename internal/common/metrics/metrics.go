// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes.
const (
	OutcomeRecommended  = "recommended"
	OutcomeEmptyCatalog = "empty_catalog"
	OutcomeInvalid      = "invalid_preferences"
	OutcomeFault        = "fault"
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

	PlanRecommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	PlanRecommendationTopScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plan_recommendation_top_score",
			Help:    "Hybrid score of the best recommended plan",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
)

// ObserveRecommendation records one recommendation request. topScore is
// only observed for successful ones.
func ObserveRecommendation(outcome string, topScore float64) {
	PlanRecommendations.WithLabelValues(outcome).Inc()
	if outcome == OutcomeRecommended {
		PlanRecommendationTopScore.Observe(topScore)
	}
}
