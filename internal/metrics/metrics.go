// Package metrics defines the Prometheus metrics for balance queries.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Balance query metrics
var (
	BalanceQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nbalance",
			Name:      "balance_queries_total",
			Help:      "Total number of balance queries by outcome",
		},
		[]string{"provider", "outcome"}, // ok, status, api, timeout, network, exception
	)

	BalanceQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nbalance",
			Name:      "balance_query_duration_seconds",
			Help:      "Balance query duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	BalanceAmount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "nbalance",
			Name:      "balance_amount",
			Help:      "Last successfully fetched balance in currency units",
		},
		[]string{"provider"},
	)

	PluginInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nbalance",
			Name:      "plugin_invocations_total",
			Help:      "Command and tool invocations handled by plugins",
		},
		[]string{"kind", "name"}, // kind: command, tool
	)
)

var registerOnce sync.Once

// Register registers the metrics with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(BalanceQueriesTotal)
		prometheus.MustRegister(BalanceQueryDuration)
		prometheus.MustRegister(BalanceAmount)
		prometheus.MustRegister(PluginInvocationsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(HTTPRequestsTotal)
	})
}
