// Package metrics exposes run counters to Prometheus.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"SmartRecover/internal/domain"
)

const namespace = "smartrecover"

// Recorder mirrors RunStatistics into Prometheus collectors.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	processed     prometheus.Counter
	highPriority  prometheus.Counter
	batches       prometheus.Counter
	errors        *prometheus.CounterVec
	batchDuration prometheus.Histogram
	runDuration   prometheus.Gauge
	indexed       prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debtors_processed_total",
			Help:      "Debtors successfully processed.",
		}),
		highPriority: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "high_priority_debtors_total",
			Help:      "Processed debtors whose fresh priority exceeded the threshold.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Completed batches.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debtor_errors_total",
			Help:      "Isolated per-debtor failures by stage.",
		}, []string{"stage"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time spent processing one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the most recent run.",
		}),
		indexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_indexed_debtors",
			Help:      "Debtors admitted to the priority index in the most recent run.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.processed, r.highPriority, r.batches, r.errors, r.batchDuration, r.runDuration, r.indexed,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// ObserveProcessed counts a success outcome.
func (r *Recorder) ObserveProcessed(highPriority bool) {
	if r == nil {
		return
	}
	r.processed.Inc()
	if highPriority {
		r.highPriority.Inc()
	}
}

// ObserveError counts an isolated failure.
func (r *Recorder) ObserveError(stage domain.Stage) {
	if r == nil {
		return
	}
	r.errors.WithLabelValues(string(stage)).Inc()
}

// ObserveBatch counts a completed batch.
func (r *Recorder) ObserveBatch(d time.Duration) {
	if r == nil {
		return
	}
	r.batches.Inc()
	r.batchDuration.Observe(d.Seconds())
}

// ObserveRun records run-level gauges.
func (r *Recorder) ObserveRun(stats domain.RunStatistics) {
	if r == nil {
		return
	}
	r.runDuration.Set(stats.Elapsed.Seconds())
	r.indexed.Set(float64(stats.Indexed))
}

// Push sends everything gathered by g to a Prometheus pushgateway.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
