package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	registry = prometheus.NewRegistry()

	// Build metrics
	ImagesBuilt = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ferry_images_built_total",
			Help: "Total number of images built this run",
		},
	)

	BuildCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ferry_build_cache_hits_total",
			Help: "Total number of builds satisfied by an existing artifact",
		},
	)

	BuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ferry_build_duration_seconds",
			Help:    "Duration of single image builds in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// Reconcile metrics
	ChangesPlanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferry_changes_planned_total",
			Help: "Total number of planned container changes by operator",
		},
		[]string{"operator"},
	)

	ChangesApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferry_changes_applied_total",
			Help: "Total number of applied container changes by operator",
		},
		[]string{"operator"},
	)

	HealthProbes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferry_health_probes_total",
			Help: "Total number of health probes by status",
		},
		[]string{"status"},
	)

	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ferry_reconcile_duration_seconds",
			Help:    "Duration of full reconcile runs in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// Run metrics
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferry_runs_total",
			Help: "Total number of runs by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	// Register all metrics
	registry.MustRegister(ImagesBuilt)
	registry.MustRegister(BuildCacheHits)
	registry.MustRegister(BuildDuration)
	registry.MustRegister(ChangesPlanned)
	registry.MustRegister(ChangesApplied)
	registry.MustRegister(HealthProbes)
	registry.MustRegister(ReconcileDuration)
	registry.MustRegister(RunsTotal)
}

// Push sends everything collected during this run to a Pushgateway. Ferry
// processes are one-shot, so metrics leave through a push, grouped by run
// kind; without a configured gateway nothing is collected anywhere.
func Push(gateway, kind string) error {
	if err := push.New(gateway, "ferry").
		Grouping("kind", kind).
		Gatherer(registry).
		Push(); err != nil {
		return fmt.Errorf("failed to push metrics to %q: %w", gateway, err)
	}
	return nil
}
