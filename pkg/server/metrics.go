package server

import (
	"context"
	"time"

	"github.com/inisipanji/sawebagi/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

const metricsInterval = 15 * time.Second

// Metrics holds the relay's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	ingestTotal    *prometheus.CounterVec
	ingestDuration *prometheus.HistogramVec
	pollTotal      *prometheus.CounterVec
	forwardTotal   *prometheus.CounterVec
	pendingEvents  prometheus.Gauge
	donors         prometheus.Gauge
	archivedEvents prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ingestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Total number of donation webhooks by platform and outcome.",
		}, []string{"platform", "outcome"}),

		ingestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "webhook_duration_seconds",
			Help:      "Latency of donation webhook handling.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"platform"}),

		pollTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Total number of queue polls by result.",
		}, []string{"result"}),

		forwardTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forwards_total",
			Help:      "Total number of donations forwarded to targets.",
		}, []string{"success"}),

		pendingEvents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_events",
			Help:      "Number of donations waiting in the queue.",
		}),

		donors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leaderboard_donors",
			Help:      "Number of donors on the leaderboard.",
		}),

		archivedEvents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archived_events",
			Help:      "Number of archived donations, -1 when archiving is off.",
		}),
	}
}

func (m *Metrics) RecordIngest(platform, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	if platform == "" {
		platform = "unknown"
	}
	m.ingestTotal.WithLabelValues(platform, outcome).Inc()
	m.ingestDuration.WithLabelValues(platform).Observe(d.Seconds())
}

func (m *Metrics) RecordPoll(result string) {
	if m == nil {
		return
	}
	m.pollTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordForward(success bool) {
	if m == nil {
		return
	}
	label := "false"
	if success {
		label = "true"
	}
	m.forwardTotal.WithLabelValues(label).Inc()
}

func (m *Metrics) SetStats(stats storage.Stats) {
	if m == nil {
		return
	}
	m.pendingEvents.Set(float64(stats.Pending))
	m.donors.Set(float64(stats.Donors))
	m.archivedEvents.Set(float64(stats.Archived))
}

// updateMetrics periodically refreshes the storage gauges until ctx is done
func updateMetrics(ctx context.Context, store storage.Storage, metrics *Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Update immediately on start
	updateMetricsOnce(ctx, store, metrics)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateMetricsOnce(ctx, store, metrics)
		}
	}
}

func updateMetricsOnce(ctx context.Context, store storage.Storage, metrics *Metrics) {
	stats, err := store.Stats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read storage stats")
		return
	}
	metrics.SetStats(stats)
}
