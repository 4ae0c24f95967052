package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RolesRegistered   *prometheus.CounterVec
	DonationsReceived prometheus.Counter
	UnitsIssued       prometheus.Counter
	UnitsAssigned     prometheus.Counter
	StatusTransitions *prometheus.CounterVec
	RequestLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RolesRegistered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aidchain_roles_registered_total",
			Help: "Total role registrations, including overwrites, by role",
		}, []string{"role"}),
		DonationsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aidchain_donations_received_total",
			Help: "Total accepted donations",
		}),
		UnitsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aidchain_units_issued_total",
			Help: "Total aid units issued by threshold crossings",
		}),
		UnitsAssigned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aidchain_units_assigned_total",
			Help: "Total aid unit assignment calls that succeeded",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aidchain_status_transitions_total",
			Help: "Total successful delivery status transitions by new status",
		}, []string{"status"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aidchain_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}
