// Package metrics exposes Prometheus counters for the translation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbchat_turns_total",
			Help: "Total number of completed chat turns by outcome.",
		},
		[]string{"outcome"},
	)
	providerCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbchat_provider_calls_total",
			Help: "Total number of model invocations by provider result.",
		},
		[]string{"result"},
	)
	retriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dbchat_retries_total",
			Help: "Total number of retry attempts after a model mistake.",
		},
	)
	plotRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbchat_plot_runs_total",
			Help: "Total number of plot script executions by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(turnsTotal, providerCallsTotal, retriesTotal, plotRunsTotal)
}

func TurnCompleted(outcome string) {
	turnsTotal.WithLabelValues(outcome).Inc()
}

func ProviderCall(result string) {
	providerCallsTotal.WithLabelValues(result).Inc()
}

func RetryAttempt() {
	retriesTotal.Inc()
}

func PlotRun(result string) {
	plotRunsTotal.WithLabelValues(result).Inc()
}
