// Package metrics exposes Prometheus instrumentation for cart operations.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Operations counts cart store operations by name and outcome.
	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "miria",
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Cart store operations by operation and status.",
		},
		[]string{"operation", "status"},
	)

	// MergeOutcomes counts login-time cart merges by result.
	MergeOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "miria",
			Subsystem: "cart",
			Name:      "merge_total",
			Help:      "Login cart merges by outcome (merged, empty, failed).",
		},
		[]string{"outcome"},
	)

	// MergedItems counts line items submitted to the merge endpoint.
	MergedItems = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "miria",
			Subsystem: "cart",
			Name:      "merged_items_total",
			Help:      "Line items submitted in login cart merges.",
		},
	)
)

func init() {
	prometheus.MustRegister(Operations, MergeOutcomes, MergedItems)
}

// ObserveOperation records one cart operation result.
func ObserveOperation(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	Operations.WithLabelValues(operation, status).Inc()
}
