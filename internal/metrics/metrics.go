// Package metrics instruments the submission engine with Prometheus
// collectors. A nil *Collector is valid and records nothing.
package metrics

import (
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Namespace prefixes every metric name.
const Namespace = "toothdex"

// Collector holds the engine's metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	submissions      *prometheus.CounterVec
	rarity           prometheus.Histogram
	persistFailures  prometheus.Counter
	uniquePatterns   prometheus.Gauge
	totalSubmissions prometheus.Gauge
	rarePatterns     prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	return NewWith(reg, reg)
}

// NewWith registers the collectors on reg. gatherer is used by WriteText
// and may be nil if text output is not needed.
func NewWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		gatherer: gatherer,
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "submissions_total",
			Help:      "Submissions accepted, by whether the pattern was new.",
		}, []string{"new"}),
		rarity: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "rarity_score",
			Help:      "Rarity score assigned to each submission.",
			Buckets:   []float64{10, 25, 50, 70, 80, 90, 95, 99, 100},
		}),
		persistFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "persist_failures_total",
			Help:      "Saves that failed and left the state non-durable.",
		}),
		uniquePatterns: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "unique_patterns",
			Help:      "Distinct patterns in the store.",
		}),
		totalSubmissions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "total_submissions",
			Help:      "Submissions recorded in the store.",
		}),
		rarePatterns: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "rare_patterns",
			Help:      "Entries on the rarity leaderboard.",
		}),
	}
}

// ObserveSubmission records one accepted submission.
func (c *Collector) ObserveSubmission(isNew bool, score int) {
	if c == nil {
		return
	}
	c.submissions.WithLabelValues(strconv.FormatBool(isNew)).Inc()
	c.rarity.Observe(float64(score))
}

// SetStoreSize updates the store gauges.
func (c *Collector) SetStoreSize(total, unique, rare int) {
	if c == nil {
		return
	}
	c.totalSubmissions.Set(float64(total))
	c.uniquePatterns.Set(float64(unique))
	c.rarePatterns.Set(float64(rare))
}

// PersistFailed counts a failed save.
func (c *Collector) PersistFailed() {
	if c == nil {
		return
	}
	c.persistFailures.Inc()
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	if c == nil || c.gatherer == nil {
		return nil
	}
	families, err := c.gatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
