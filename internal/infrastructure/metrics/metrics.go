package metrics

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Bid ledger metrics
	bidsPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dmx",
			Subsystem: "ledger",
			Name:      "bids_placed_total",
			Help:      "Total number of bid entries appended",
		},
	)

	bidAmounts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dmx",
			Subsystem: "ledger",
			Name:      "bid_amount",
			Help:      "Distribution of placed bid amounts",
			Buckets:   prometheus.ExponentialBuckets(1000, 4, 10),
		},
	)

	// Lifecycle engine metrics
	transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dmx",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Total lifecycle transition attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Sweep metrics
	sweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dmx",
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Total sweep executions by kind",
		},
		[]string{"kind"},
	)

	sweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dmx",
			Subsystem: "sweep",
			Name:      "run_duration_seconds",
			Help:      "Sweep execution duration",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"kind"},
	)

	sweepOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dmx",
			Subsystem: "sweep",
			Name:      "listing_outcomes_total",
			Help:      "Per-listing sweep update outcomes by kind",
		},
		[]string{"kind", "outcome"},
	)
)

// Collector implements the lifecycle and sweep metrics ports on top of
// Prometheus.
type Collector struct{}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) RecordBidPlaced(_ uuid.UUID, amount int64) {
	bidsPlaced.Inc()
	bidAmounts.Observe(float64(amount))
}

func (c *Collector) RecordTransition(op string, outcome string) {
	transitions.WithLabelValues(op, outcome).Inc()
}

func (c *Collector) RecordSweepRun(kind string, duration time.Duration) {
	sweepRuns.WithLabelValues(kind).Inc()
	sweepDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (c *Collector) RecordSweepOutcome(kind string, outcome string) {
	sweepOutcomes.WithLabelValues(kind, outcome).Inc()
}

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}
