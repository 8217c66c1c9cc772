package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notifier delivers the draft_complete notice for a room.
type Notifier interface {
	NotifyDraftComplete(ctx context.Context, roomID uuid.UUID, at time.Time) error
}

// MetricsCollector defines the interface for collecting notification metrics
type MetricsCollector interface {
	RecordNotification(success bool, duration time.Duration)
}

// LogNotifier only logs; it stands in when NATS is disabled.
type LogNotifier struct{}

func (LogNotifier) NotifyDraftComplete(ctx context.Context, roomID uuid.UUID, at time.Time) error {
	log.Info().
		Str("room_id", roomID.String()).
		Time("completed_at", at).
		Msg("draft complete (results notification disabled)")
	return nil
}

// MetricNotifier wraps a Notifier with metrics collection
type MetricNotifier struct {
	notifier Notifier
	metrics  MetricsCollector
}

func NewMetricNotifier(notifier Notifier, metrics MetricsCollector) *MetricNotifier {
	return &MetricNotifier{
		notifier: notifier,
		metrics:  metrics,
	}
}

func (n *MetricNotifier) NotifyDraftComplete(ctx context.Context, roomID uuid.UUID, at time.Time) error {
	start := time.Now()

	err := n.notifier.NotifyDraftComplete(ctx, roomID, at)

	n.metrics.RecordNotification(err == nil, time.Since(start))
	return err
}
