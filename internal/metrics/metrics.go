package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Page load outcomes.
const (
	OutcomeReady    = "ready"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Session request outcomes.
const (
	OutcomeCreated      = "created"
	OutcomeAlreadySent  = "already_sent"
	OutcomeInFlight     = "in_flight"
	OutcomeUnauthorized = "unauthenticated"
	OutcomeFailed       = "failed"
)

// Metrics holds the collaborator page counters.
type Metrics struct {
	pageLoads       *prometheus.CounterVec
	sessionRequests *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pageLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collab_page_loads_total",
			Help: "Collaborator page loads by subject source and outcome",
		}, []string{"source", "outcome"}),
		sessionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collab_session_requests_total",
			Help: "Session request submissions by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.pageLoads, m.sessionRequests)
	return m
}

// PageLoad records one page load. A nil receiver is a no-op.
func (m *Metrics) PageLoad(source, outcome string) {
	if m == nil {
		return
	}
	m.pageLoads.WithLabelValues(source, outcome).Inc()
}

// SessionRequest records one submission attempt. A nil receiver is a no-op.
func (m *Metrics) SessionRequest(outcome string) {
	if m == nil {
		return
	}
	m.sessionRequests.WithLabelValues(outcome).Inc()
}
