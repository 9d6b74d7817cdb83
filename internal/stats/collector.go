// Package stats implements the metrics contract on Prometheus counters.
// The collector is constructed against an explicit registerer and injected
// where needed; nothing registers against the global default implicitly.
package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector counts deployment submissions and outcomes plus engine
// progress-notification traffic.
type Collector struct {
	submitted     prometheus.Counter
	succeeded     prometheus.Counter
	failed        prometheus.Counter
	notifications *prometheus.CounterVec
}

// NewCollector builds and registers the catalog counters. Passing nil uses
// the default registerer.
func NewCollector(registerer prometheus.Registerer) *Collector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Collector{
		submitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "appcatalog",
			Subsystem: "deployments",
			Name:      "submitted_total",
			Help:      "Deployments handed to the orchestration engine",
		}),
		succeeded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "appcatalog",
			Subsystem: "deployments",
			Name:      "succeeded_total",
			Help:      "Deployments reconciled without errors",
		}),
		failed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "appcatalog",
			Subsystem: "deployments",
			Name:      "failed_total",
			Help:      "Deployments reconciled with errors or warnings",
		}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appcatalog",
			Subsystem: "engine",
			Name:      "notifications_total",
			Help:      "Progress notifications received from the engine",
		}, []string{"level"}),
	}
}

func (c *Collector) DeploymentSubmitted() {
	c.submitted.Inc()
}

func (c *Collector) DeploymentSucceeded() {
	c.succeeded.Inc()
}

func (c *Collector) DeploymentFailed() {
	c.failed.Inc()
}

func (c *Collector) NotificationReceived(level string) {
	c.notifications.WithLabelValues(level).Inc()
}
