package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// ContractTransitions counts status changes by contract kind
	// (monthly, link) and target status.
	ContractTransitions = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "contract_transitions_total",
		Help:      "Contract status transitions by kind and status.",
	}, []string{"kind", "status"})

	// SagaSteps counts step executions by outcome: ok, retry, parked,
	// replayed, replay_failed.
	SagaSteps = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "saga_steps_total",
		Help:      "Saga step executions by step and outcome.",
	}, []string{"step", "outcome"})

	AvailabilityChanges = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "availability_changes_total",
		Help:      "Availability ledger writes by the synchronizer.",
	}, []string{"action"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}
