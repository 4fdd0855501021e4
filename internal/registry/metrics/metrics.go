package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the driver registry.
type Metrics struct {
	Registered        prometheus.Counter
	Deregistered      prometheus.Counter
	BatchPartials     prometheus.Counter
	RegisteredDrivers prometheus.Gauge
}

// New creates and registers the registry metrics on the default registerer.
func New() *Metrics {
	return &Metrics{
		Registered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shipment_stream_drivers_registered_total",
			Help: "Total number of driver registrations accepted",
		}),
		Deregistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shipment_stream_drivers_deregistered_total",
			Help: "Total number of driver deregistrations accepted",
		}),
		BatchPartials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shipment_stream_batch_partial_commits_total",
			Help: "Batch calls that stopped early on an exhausted work budget",
		}),
		RegisteredDrivers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "shipment_stream_registered_drivers",
			Help: "Current number of registered drivers",
		}),
	}
}
