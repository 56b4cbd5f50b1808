package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SessionsStarted   prometheus.Counter
	SessionsSubmitted prometheus.Counter
	SessionsExpired   prometheus.Counter
	LookupsDiscarded  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cepbook_registration_sessions_started_total",
			Help: "Total number of registration sessions opened",
		}),
		SessionsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cepbook_registration_sessions_submitted_total",
			Help: "Total number of registration sessions committed to a record",
		}),
		SessionsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cepbook_registration_sessions_expired_total",
			Help: "Total number of registration sessions dropped by TTL expiry",
		}),
		LookupsDiscarded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cepbook_registration_lookups_discarded_total",
			Help: "Lookup results discarded because the postal code changed first",
		}),
	}
}

func (m *Metrics) IncrementSessionsStarted() {
	m.SessionsStarted.Inc()
}

func (m *Metrics) IncrementSessionsSubmitted() {
	m.SessionsSubmitted.Inc()
}

func (m *Metrics) AddSessionsExpired(count int) {
	m.SessionsExpired.Add(float64(count))
}

func (m *Metrics) IncrementLookupsDiscarded() {
	m.LookupsDiscarded.Inc()
}
