package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ledger module.
// Tracks ingestion volume, backfill reach, and read-path durations.
type Metrics struct {
	EventsRecorded        prometheus.Counter
	BackfillEventsUpdated prometheus.Counter
	AggregateDuration     prometheus.Histogram
	RankDuration          prometheus.Histogram
}

// New creates a new Metrics instance with all ledger module metrics registered.
func New() *Metrics {
	return &Metrics{
		EventsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rvm_ledger_events_recorded_total",
			Help: "Total number of recycling events recorded",
		}),
		BackfillEventsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rvm_ledger_backfill_events_updated_total",
			Help: "Total number of ledger events that received a username via backfill or rename",
		}),
		AggregateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rvm_ledger_aggregate_duration_seconds",
			Help:    "Duration of per-phone aggregation (leaderboard critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		RankDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rvm_ledger_rank_duration_seconds",
			Help:    "Duration of full leaderboard ranking including profile join",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementEventsRecorded records one accepted machine report.
func (m *Metrics) IncrementEventsRecorded() {
	m.EventsRecorded.Inc()
}

// AddBackfillEventsUpdated records how many events a backfill touched.
func (m *Metrics) AddBackfillEventsUpdated(n int64) {
	m.BackfillEventsUpdated.Add(float64(n))
}

// ObserveAggregate records the duration of an aggregation pass.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAggregate(start time.Time) {
	m.AggregateDuration.Observe(time.Since(start).Seconds())
}

// ObserveRank records the duration of a ranking pass.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRank(start time.Time) {
	m.RankDuration.Observe(time.Since(start).Seconds())
}
