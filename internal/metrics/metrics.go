// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "tasklane"

const (
	LabelKind   = "kind"
	LabelReason = "reason"
)

var EventsPublished = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "events_published_total",
		Help:      "Task mutation events published to the bus",
		Namespace: Namespace,
	},
	[]string{LabelKind},
)

var EventsDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      "events_dropped_total",
		Help:      "Events dropped because a subscriber buffer was full",
		Namespace: Namespace,
	},
)

var StreamSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name:      "stream_subscribers",
		Help:      "Live event stream subscriptions",
		Namespace: Namespace,
	},
)

var TasksCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      "tasks_created_total",
		Help:      "Tasks created one at a time through the API",
		Namespace: Namespace,
	},
)

var TasksImported = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      "tasks_imported_total",
		Help:      "Tasks persisted through CSV imports",
		Namespace: Namespace,
	},
)

var ImportsRejected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "imports_rejected_total",
		Help:      "CSV imports rejected before persistence, by reason",
		Namespace: Namespace,
	},
	[]string{LabelReason},
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
