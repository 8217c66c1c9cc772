package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

type JetStreamConfig struct {
	URL             string
	StreamName      string
	Subject         string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration // How long to keep messages
	Replicas        int           // Number of replicas for the stream
	DuplicateWindow time.Duration // Window for duplicate detection
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "DRAFT_RESULTS",
		Subject:         "draft.results.complete",
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          7 * 24 * time.Hour, // 7 days
		Replicas:        1,
		DuplicateWindow: 2 * time.Hour,
	}
}

// JetStreamNotifier publishes one draft_complete message per finished room
// to a JetStream stream consumed by the results processor.
type JetStreamNotifier struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

func NewJetStreamNotifier(ctx context.Context, cfg JetStreamConfig) (*JetStreamNotifier, error) {
	opts := []nats.Option{
		nats.Name("draftroom"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	n := &JetStreamNotifier{nc: nc, js: js, config: cfg}

	if err := n.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return n, nil
}

func (n *JetStreamNotifier) ensureStream(ctx context.Context) error {
	sc := n.streamConfig()

	stream, err := n.js.Stream(ctx, n.config.StreamName)
	if err != nil {
		// Create new stream
		if _, err = n.js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().
			Str("stream", n.config.StreamName).
			Msg("created JetStream stream")
		return nil
	}

	// Update existing if needed
	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !isStreamConfigEqual(info.Config, sc) {
		if _, err = n.js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().
			Str("stream", n.config.StreamName).
			Msg("updated JetStream stream")
	}
	return nil
}

func (n *JetStreamNotifier) streamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        n.config.StreamName,
		Description: "Completed drafts awaiting results processing",
		Subjects:    []string{n.config.Subject},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      n.config.MaxAge,
		Storage:     jetstream.FileStorage,
		Replicas:    n.config.Replicas,
		Duplicates:  n.config.DuplicateWindow,
	}
}

// NotifyDraftComplete publishes {event, room_id, timestamp}. The message id is
// derived from the room so a retried publish inside the duplicate window is
// dropped by the server.
func (n *JetStreamNotifier) NotifyDraftComplete(ctx context.Context, roomID uuid.UUID, at time.Time) error {
	msg, err := resultsMsg(n.config.Subject, roomID, at)
	if err != nil {
		return err
	}

	ack, err := n.js.PublishMsg(ctx, msg,
		jetstream.WithMsgID(resultsMsgID(roomID)),
		jetstream.WithExpectStream(n.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Info().
		Str("subject", n.config.Subject).
		Str("room_id", roomID.String()).
		Uint64("sequence", ack.Sequence).
		Str("stream", ack.Stream).
		Bool("duplicate", ack.Duplicate).
		Msg("published draft_complete")
	return nil
}

// Connected reports whether the NATS connection is currently up.
func (n *JetStreamNotifier) Connected() bool {
	return n.nc != nil && n.nc.IsConnected()
}

func (n *JetStreamNotifier) Close() error {
	if n.nc != nil {
		if err := n.nc.Drain(); err != nil {
			n.nc.Close()
			return err
		}
	}
	return nil
}

func resultsMsg(subject string, roomID uuid.UUID, at time.Time) (*nats.Msg, error) {
	data, err := json.Marshal(events.NewResultsMessage(roomID, at))
	if err != nil {
		return nil, fmt.Errorf("marshal results message: %w", err)
	}
	return &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{events.NameDraftComplete},
			"Room-ID":    []string{roomID.String()},
		},
	}, nil
}

func resultsMsgID(roomID uuid.UUID) string {
	return events.NameDraftComplete + ":" + roomID.String()
}

func isStreamConfigEqual(a, b jetstream.StreamConfig) bool {
	if len(a.Subjects) != len(b.Subjects) {
		return false
	}
	for i := range a.Subjects {
		if a.Subjects[i] != b.Subjects[i] {
			return false
		}
	}
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates
}
