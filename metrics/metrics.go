// Package metrics defines Prometheus metrics for the cluster engines.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RunsTotal counts completed engine runs by engine and stop reason.
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localclustering_runs_total",
			Help: "Total engine runs by engine and stop reason",
		},
		[]string{"engine", "reason"},
	)

	// RunErrorsTotal counts engine runs aborted by an error.
	RunErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localclustering_run_errors_total",
			Help: "Total engine runs aborted by an error",
		},
		[]string{"engine"},
	)

	// IterationsPerRun observes the number of recorded iterations of each run.
	IterationsPerRun = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "localclustering_iterations_per_run",
			Help:    "Number of recorded iterations per engine run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"engine"},
	)

	// ClusterSize observes the size of the clusters returned by the engines.
	ClusterSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "localclustering_cluster_size",
			Help:    "Number of members in the clusters returned by the engines",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"engine"},
	)

	// EvaluationsTotal counts node evaluations by phase.
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localclustering_evaluations_total",
			Help: "Total node evaluations by phase",
		},
		[]string{"phase"},
	)

	// RelaxationsTotal counts successful relaxations of hierarchical definitions.
	RelaxationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "localclustering_relaxations_total",
			Help: "Total successful relaxations of hierarchical definitions",
		},
	)
)

// MustRegister registers every metric with reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		RunsTotal, RunErrorsTotal,
		IterationsPerRun, ClusterSize,
		EvaluationsTotal, RelaxationsTotal,
	)
}
