// Package metrics exports status lifecycle counters and histograms to Prometheus.
package metrics

import (
	"time"

	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "order_status"

// StatusMetrics implements ports.StatusMetrics.
type StatusMetrics struct {
	transitions   *prometheus.CounterVec
	batchItems    *prometheus.CounterVec
	batchDuration prometheus.Histogram
	batchSize     prometheus.Histogram
}

// NewStatusMetrics creates the collectors and registers them with reg.
func NewStatusMetrics(reg prometheus.Registerer) (*StatusMetrics, error) {
	if reg == nil {
		return nil, errs.NewValueIsRequiredError("registerer")
	}

	m := &StatusMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Requested status transitions by source, target and outcome code.",
		}, []string{"from", "to", "outcome"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Batch items by outcome code.",
		}, []string{"outcome"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of batch status updates.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of order ids per batch status update.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}

	for _, c := range []prometheus.Collector{m.transitions, m.batchItems, m.batchDuration, m.batchSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// TransitionObserved counts one single-order request. from is Unknown when
// the order could not be loaded.
func (m *StatusMetrics) TransitionObserved(from, to order.Status, outcome string) {
	m.transitions.WithLabelValues(statusLabel(from), statusLabel(to), outcome).Inc()
}

func (m *StatusMetrics) BatchItemObserved(outcome string) {
	m.batchItems.WithLabelValues(outcome).Inc()
}

func (m *StatusMetrics) BatchObserved(size int, elapsed time.Duration) {
	m.batchSize.Observe(float64(size))
	m.batchDuration.Observe(elapsed.Seconds())
}

// statusLabel keeps label cardinality bounded for out-of-range statuses.
func statusLabel(s order.Status) string {
	if !s.IsValid() {
		return "unknown"
	}
	return s.String()
}
