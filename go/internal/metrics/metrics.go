package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pick sources used as the "source" label.
const (
	SourceManual = "manual"
	SourceAuto   = "auto"
)

// Collector holds the draft engine's prometheus collectors. A nil *Collector
// is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	picksCommitted    *prometheus.CounterVec
	picksRejected     *prometheus.CounterVec
	draftsStarted     prometheus.Counter
	draftsCompleted   prometheus.Counter
	notifications     *prometheus.CounterVec
	notifyDuration    prometheus.Histogram
	liveConnections   prometheus.Gauge
	prunedConnections prometheus.Counter
	commitDuration    prometheus.Histogram
}

// New registers every collector on a private registry, together with the Go
// runtime and process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		picksCommitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draftroom",
			Name:      "picks_committed_total",
			Help:      "Picks committed, by source.",
		}, []string{"source"}),
		picksRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draftroom",
			Name:      "picks_rejected_total",
			Help:      "Pick attempts rejected before commit, by reason.",
		}, []string{"reason"}),
		draftsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "draftroom",
			Name:      "drafts_started_total",
			Help:      "Rooms moved from waiting to drafting.",
		}),
		draftsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "draftroom",
			Name:      "drafts_completed_total",
			Help:      "Rooms that reached the final pick.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draftroom",
			Name:      "results_notifications_total",
			Help:      "draft_complete notifications, by result.",
		}, []string{"result"}),
		notifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "draftroom",
			Name:      "results_notification_duration_seconds",
			Help:      "Time spent delivering a draft_complete notification.",
			Buckets:   prometheus.DefBuckets,
		}),
		liveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "draftroom",
			Name:      "websocket_connections",
			Help:      "Registered websocket connections.",
		}),
		prunedConnections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "draftroom",
			Name:      "websocket_connections_pruned_total",
			Help:      "Connections dropped after a failed send.",
		}),
		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "draftroom",
			Name:      "pick_commit_duration_seconds",
			Help:      "Time spent persisting a pick.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.picksCommitted,
		c.picksRejected,
		c.draftsStarted,
		c.draftsCompleted,
		c.notifications,
		c.notifyDuration,
		c.liveConnections,
		c.prunedConnections,
		c.commitDuration,
	)
	return c
}

// Handler serves the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) PickCommitted(source string, seconds float64) {
	if c == nil {
		return
	}
	c.picksCommitted.WithLabelValues(source).Inc()
	c.commitDuration.Observe(seconds)
}

func (c *Collector) PickRejected(reason string) {
	if c == nil {
		return
	}
	c.picksRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) DraftStarted() {
	if c == nil {
		return
	}
	c.draftsStarted.Inc()
}

func (c *Collector) DraftCompleted() {
	if c == nil {
		return
	}
	c.draftsCompleted.Inc()
}

// RecordNotification satisfies outbox.MetricsCollector.
func (c *Collector) RecordNotification(success bool, duration time.Duration) {
	if c == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	c.notifications.WithLabelValues(result).Inc()
	c.notifyDuration.Observe(duration.Seconds())
}

func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.liveConnections.Inc()
}

func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.liveConnections.Dec()
}

func (c *Collector) ConnectionsPruned(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.prunedConnections.Add(float64(n))
}
