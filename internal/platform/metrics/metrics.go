package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the portal.
type Metrics struct {
	Signups               *prometheus.CounterVec
	Logins                prometheus.Counter
	LoginFailures         prometheus.Counter
	SchemesCreated        prometheus.Counter
	ApplicationsSubmitted prometheus.Counter
	ApplicationsReviewed  *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Signups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "schemeportal_signups_total",
			Help: "Total number of accounts created, by role",
		}, []string{"role"}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "schemeportal_logins_total",
			Help: "Total number of successful logins",
		}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "schemeportal_login_failures_total",
			Help: "Total number of failed login attempts",
		}),
		SchemesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "schemeportal_schemes_created_total",
			Help: "Total number of schemes created",
		}),
		ApplicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "schemeportal_applications_submitted_total",
			Help: "Total number of applications submitted",
		}),
		ApplicationsReviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "schemeportal_applications_reviewed_total",
			Help: "Total number of applications reviewed, by decision",
		}, []string{"decision"}),
	}
}
