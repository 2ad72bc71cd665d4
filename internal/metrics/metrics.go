// Package metrics exposes Prometheus instrumentation for the signal engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the monitor.
type Metrics struct {
	Evaluations        *prometheus.CounterVec   // labels: trigger
	FetchFailures      *prometheus.CounterVec   // labels: instrument
	Crossovers         *prometheus.CounterVec   // labels: instrument, kind
	Alerts             *prometheus.CounterVec   // labels: instrument
	NotifyFailures     prometheus.Counter
	HistorySize        *prometheus.GaugeVec     // labels: instrument
	EvaluationDuration *prometheus.HistogramVec // labels: trigger
}

// New registers all collectors with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crossmon_evaluations_total",
			Help: "Instrument evaluations run, by trigger path",
		}, []string{"trigger"}),
		FetchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crossmon_fetch_failures_total",
			Help: "Instruments skipped because market data was unavailable",
		}, []string{"instrument"}),
		Crossovers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crossmon_crossovers_total",
			Help: "Detected crossovers by kind",
		}, []string{"instrument", "kind"}),
		Alerts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crossmon_alerts_total",
			Help: "Confirmed signals raised",
		}, []string{"instrument"}),
		NotifyFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "crossmon_notify_failures_total",
			Help: "Alerts whose delivery failed on at least one channel",
		}),
		HistorySize: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "crossmon_history_size",
			Help: "Price crossovers currently retained per instrument",
		}, []string{"instrument"}),
		EvaluationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crossmon_evaluation_duration_seconds",
			Help:    "Time to evaluate one instrument including the data fetch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"trigger"}),
	}
}
