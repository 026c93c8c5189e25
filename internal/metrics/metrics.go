// Package metrics exposes prometheus collectors for the interview core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Bus tracks event-bus traffic
type Bus struct {
	Published  *prometheus.CounterVec
	Dispatched *prometheus.CounterVec
	QueueDepth prometheus.Gauge
}

// Analyzers tracks coordinator fan-out outcomes
type Analyzers struct {
	Results  *prometheus.CounterVec
	Failures *prometheus.CounterVec
}

// NewBus creates and registers bus collectors against reg
func NewBus(reg prometheus.Registerer) *Bus {
	b := &Bus{
		Published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_bus_events_published_total",
			Help: "Events accepted into the bus queue, by kind.",
		}, []string{"kind"}),
		Dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_bus_events_dispatched_total",
			Help: "Events fully dispatched to all handlers, by kind.",
		}, []string{"kind"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "parley_bus_queue_depth",
			Help: "Events currently waiting in the bus queue.",
		}),
	}
	reg.MustRegister(b.Published, b.Dispatched, b.QueueDepth)
	return b
}

// NewAnalyzers creates and registers analyzer collectors against reg
func NewAnalyzers(reg prometheus.Registerer) *Analyzers {
	a := &Analyzers{
		Results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_analyzer_results_total",
			Help: "Result frames produced by analyzers, by coordinator.",
		}, []string{"coordinator"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_analyzer_failures_total",
			Help: "Analyzer runs that failed and were excluded, by coordinator.",
		}, []string{"coordinator"}),
	}
	reg.MustRegister(a.Results, a.Failures)
	return a
}
