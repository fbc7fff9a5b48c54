package observability

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TemplateOperations counts template repository operations by outcome.
	TemplateOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "workflow",
		Name:      "template_operations_total",
		Help:      "Workflow template operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// TemplateEvents counts template lifecycle events seen by consumers.
	TemplateEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "workflow",
		Name:      "template_events_total",
		Help:      "Workflow template lifecycle events consumed.",
	}, []string{"event"})
)

// ObserveOperation records the outcome of a template operation.
func ObserveOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	TemplateOperations.WithLabelValues(operation, outcome).Inc()
}

// RegisterMetricsEndpoint exposes Prometheus metrics on /metrics.
func RegisterMetricsEndpoint(router chi.Router) {
	router.Handle("/metrics", promhttp.Handler())
}
