package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Provider metrics
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_provider_calls_total",
			Help: "Total number of model provider calls",
		},
		[]string{"provider", "status"}, // status: success|error|timeout
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridiron_provider_latency_seconds",
			Help:    "Model provider call latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 20, 30},
		},
		[]string{"provider"},
	)

	// Schema validation metrics
	ParseOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_analysis_parse_outcomes_total",
			Help: "Schema validation outcomes by parse state",
		},
		[]string{"provider", "state"}, // state: strict|coerced|salvaged|failed
	)

	// Consensus metrics
	ConsensusMethods = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_consensus_methods_total",
			Help: "How consensus analyses were derived",
		},
		[]string{"method"}, // method: single|weighted_merge|primary_fallback|none
	)

	ConsensusContradictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gridiron_consensus_contradictions_total",
			Help: "Provider pairs whose analyses contradicted each other",
		},
	)

	// Quality gate metrics
	GateViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_gate_violations_total",
			Help: "Quality gate violations by rule and severity",
		},
		[]string{"rule", "severity"},
	)

	GateResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_gate_results_total",
			Help: "Quality gate outcomes",
		},
		[]string{"passed"}, // passed: true|false
	)

	ConditionalRecommendations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gridiron_conditional_recommendations_total",
			Help: "Recommendations marked conditional due to missing upstream data",
		},
	)

	AdjustedConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gridiron_adjusted_confidence",
			Help:    "Final gated confidence distribution",
			Buckets: []float64{15, 25, 35, 45, 55, 65, 75, 85, 90},
		},
	)
)

// Register registers all metrics with the default registry
func Register() {
	prometheus.MustRegister(
		ProviderCalls,
		ProviderLatency,
		ParseOutcomes,
		ConsensusMethods,
		ConsensusContradictions,
		GateViolations,
		GateResults,
		ConditionalRecommendations,
		AdjustedConfidence,
	)
}

// Handler returns the HTTP handler for the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
