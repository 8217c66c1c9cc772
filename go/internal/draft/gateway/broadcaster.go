package gateway

import (
	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Broadcaster fans events out to registered connections. Delivery is best
// effort: a failed send marks the connection dead, and dead connections are
// pruned after the sweep without affecting delivery to the others.
type Broadcaster struct {
	registry *Registry
	metrics  *metrics.Collector
}

func NewBroadcaster(registry *Registry, m *metrics.Collector) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		metrics:  m,
	}
}

// BroadcastRoom sends e to every connection in the room.
func (b *Broadcaster) BroadcastRoom(roomID uuid.UUID, e events.Event) {
	b.fanOut(roomID, e, b.registry.Connections(roomID))
}

// SendToUser sends e to every connection held by user in the room.
func (b *Broadcaster) SendToUser(roomID uuid.UUID, user string, e events.Event) {
	b.fanOut(roomID, e, b.registry.UserConnections(roomID, user))
}

// SendToConnection sends e to a single connection.
func (b *Broadcaster) SendToConnection(c Conn, e events.Event) error {
	data, err := events.Encode(e)
	if err != nil {
		return err
	}
	if err := c.Send(data); err != nil {
		b.prune([]Conn{c})
		return err
	}
	return nil
}

func (b *Broadcaster) fanOut(roomID uuid.UUID, e events.Event, targets []Conn) {
	if len(targets) == 0 {
		log.Debug().
			Str("event", e.Name()).
			Str("room_id", roomID.String()).
			Msg("no connections for event")
		return
	}

	// Marshal the event once
	data, err := events.Encode(e)
	if err != nil {
		log.Error().Err(err).Str("event", e.Name()).Msg("failed to encode event for broadcast")
		return
	}

	var dead []Conn
	for _, c := range targets {
		if err := c.Send(data); err != nil {
			log.Warn().
				Err(err).
				Str("connection_id", c.ID()).
				Str("user_name", c.UserName()).
				Msg("send failed, dropping connection")
			dead = append(dead, c)
		}
	}
	b.prune(dead)

	log.Debug().
		Str("event", e.Name()).
		Str("room_id", roomID.String()).
		Int("connections", len(targets)).
		Int("dropped", len(dead)).
		Msg("event broadcasted")
}

func (b *Broadcaster) prune(dead []Conn) {
	pruned := 0
	for _, c := range dead {
		if b.registry.Unregister(c) {
			pruned++
		}
		_ = c.Close()
	}
	b.metrics.ConnectionsPruned(pruned)
}
