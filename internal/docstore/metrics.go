package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for backend traffic.
type Metrics struct {
	Reads          *prometheus.CounterVec
	Commits        *prometheus.CounterVec
	Conflicts      prometheus.Counter
	CommitDuration prometheus.Histogram
	CommitOps      prometheus.Histogram
}

// NewMetrics builds unregistered collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "docstore",
			Name:      "reads_total",
			Help:      "Document reads by operation, collection and result.",
		}, []string{"op", "collection", "result"}),
		Commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "docstore",
			Name:      "commits_total",
			Help:      "Commit batches by result (ok, conflict, error).",
		}, []string{"result"}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "docstore",
			Name:      "concurrency_conflicts_total",
			Help:      "Commits rejected by an optimistic concurrency check.",
		}),
		CommitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "docstore",
			Name:      "commit_duration_seconds",
			Help:      "Latency of commit batches.",
			Buckets:   prometheus.DefBuckets,
		}),
		CommitOps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "docstore",
			Name:      "commit_ops",
			Help:      "Number of writes per commit batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
}

// Register registers the collectors on reg (or the default registerer if
// nil). Collectors that are already registered are not an error.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{m.Reads, m.Commits, m.Conflicts, m.CommitDuration, m.CommitOps} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// Instrument wraps b so that every call is recorded in m.
func Instrument(b Backend, m *Metrics) Backend {
	return &instrumentedBackend{next: b, metrics: m}
}

type instrumentedBackend struct {
	next    Backend
	metrics *Metrics
}

func (b *instrumentedBackend) Get(ctx context.Context, collection, id string) (Document, error) {
	doc, err := b.next.Get(ctx, collection, id)
	b.metrics.Reads.WithLabelValues("get", collection, readResult(err)).Inc()
	return doc, err
}

func (b *instrumentedBackend) List(ctx context.Context, collection string) ([]Document, error) {
	docs, err := b.next.List(ctx, collection)
	b.metrics.Reads.WithLabelValues("list", collection, readResult(err)).Inc()
	return docs, err
}

func (b *instrumentedBackend) Commit(ctx context.Context, ops []Op) ([]int64, error) {
	start := time.Now()
	versions, err := b.next.Commit(ctx, ops)
	b.metrics.CommitDuration.Observe(time.Since(start).Seconds())
	b.metrics.CommitOps.Observe(float64(len(ops)))

	switch {
	case err == nil:
		b.metrics.Commits.WithLabelValues("ok").Inc()
	case IsConcurrencyError(err):
		b.metrics.Commits.WithLabelValues("conflict").Inc()
		b.metrics.Conflicts.Inc()
	default:
		b.metrics.Commits.WithLabelValues("error").Inc()
	}
	return versions, err
}

func (b *instrumentedBackend) Close() error {
	return b.next.Close()
}

func readResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
