// Package metrics exposes planner counters on the default Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RouteLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripcore_route_resolutions_total",
			Help: "Route facts answered, by cascade source",
		},
		[]string{"source"},
	)

	HazardFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripcore_hazard_lookups_total",
			Help: "Hazard lookups by outcome (ok, uncertain)",
		},
		[]string{"outcome"},
	)

	PlansAssembled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripcore_plan_assemblies_total",
			Help: "Plan assemblies by outcome",
		},
		[]string{"outcome"},
	)

	NarrativeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripcore_narrative_generations_total",
			Help: "Narrative enrichment attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(RouteLookups, HazardFetches, PlansAssembled, NarrativeRequests)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
