package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RecordsCreated  prometheus.Counter
	RecordsDeleted  prometheus.Counter
	SearchesRun     prometheus.Counter
	ReadDegradation prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		RecordsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cepbook_records_created_total",
			Help: "Total number of address records created",
		}),
		RecordsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cepbook_records_deleted_total",
			Help: "Total number of address records deleted",
		}),
		SearchesRun: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cepbook_record_searches_total",
			Help: "Total number of record name searches executed",
		}),
		ReadDegradation: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cepbook_record_read_degradations_total",
			Help: "Reads that returned an empty result because the store failed",
		}),
	}
}

func (m *Metrics) IncrementRecordsCreated() {
	m.RecordsCreated.Inc()
}

func (m *Metrics) IncrementRecordsDeleted() {
	m.RecordsDeleted.Inc()
}

func (m *Metrics) IncrementSearchesRun() {
	m.SearchesRun.Inc()
}

func (m *Metrics) IncrementReadDegradation() {
	m.ReadDegradation.Inc()
}
