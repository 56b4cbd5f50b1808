package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reasons keep provider outages distinguishable from codes that
// simply do not exist.
const (
	ReasonNoMatch     = "no_match"
	ReasonUnavailable = "unavailable"
	ReasonTimeout     = "timeout"
)

type Metrics struct {
	LookupDuration prometheus.Histogram
	LookupFailures *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		LookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cepbook_cep_lookup_duration_seconds",
			Help:    "Duration of postal code lookups against the provider",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LookupFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cepbook_cep_lookup_failures_total",
			Help: "Postal code lookups that did not produce an address, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) ObserveLookup(start time.Time) {
	m.LookupDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementFailure(reason string) {
	m.LookupFailures.WithLabelValues(reason).Inc()
}
