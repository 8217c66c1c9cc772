package gateway

import (
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Conn is one live client connection bound to a room and a user.
type Conn interface {
	ID() string
	RoomID() uuid.UUID
	UserName() string
	// Send queues data for delivery. It must not block.
	Send(data []byte) error
	Close() error
}

// Registry indexes live connections by room and by room+user. A user may hold
// any number of connections at once.
type Registry struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[string]Conn
	users map[uuid.UUID]map[string]map[string]Conn

	metrics *metrics.Collector
}

func NewRegistry(m *metrics.Collector) *Registry {
	return &Registry{
		rooms:   make(map[uuid.UUID]map[string]Conn),
		users:   make(map[uuid.UUID]map[string]map[string]Conn),
		metrics: m,
	}
}

// Register adds c to both indexes. Registering the same connection twice is a no-op.
func (r *Registry) Register(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, user := c.RoomID(), c.UserName()

	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[string]Conn)
		r.users[roomID] = make(map[string]map[string]Conn)
	}
	if _, exists := r.rooms[roomID][c.ID()]; exists {
		return
	}
	r.rooms[roomID][c.ID()] = c

	if r.users[roomID][user] == nil {
		r.users[roomID][user] = make(map[string]Conn)
	}
	r.users[roomID][user][c.ID()] = c
	r.metrics.ConnectionOpened()

	log.Debug().
		Str("connection_id", c.ID()).
		Str("room_id", roomID.String()).
		Str("user_name", user).
		Int("room_connections", len(r.rooms[roomID])).
		Int("user_connections", len(r.users[roomID][user])).
		Msg("connection registered")
}

// Unregister removes c from both indexes and prunes empty sets. It reports
// whether c was registered.
func (r *Registry) Unregister(c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, user := c.RoomID(), c.UserName()

	conns, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	if _, ok := conns[c.ID()]; !ok {
		return false
	}
	delete(conns, c.ID())

	if userConns := r.users[roomID][user]; userConns != nil {
		delete(userConns, c.ID())
		if len(userConns) == 0 {
			delete(r.users[roomID], user)
		}
	}
	if len(conns) == 0 {
		delete(r.rooms, roomID)
		delete(r.users, roomID)
	}
	r.metrics.ConnectionClosed()

	log.Debug().
		Str("connection_id", c.ID()).
		Str("room_id", roomID.String()).
		Str("user_name", user).
		Msg("connection unregistered")
	return true
}

// Connections returns a snapshot of the room's connections.
func (r *Registry) Connections(roomID uuid.UUID) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return snapshot(r.rooms[roomID])
}

// UserConnections returns a snapshot of one user's connections in a room.
func (r *Registry) UserConnections(roomID uuid.UUID, user string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return snapshot(r.users[roomID][user])
}

// All returns every registered connection.
func (r *Registry) All() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Conn
	for _, conns := range r.rooms {
		out = append(out, snapshot(conns)...)
	}
	return out
}

// Stats summarises the registry for the stats endpoint.
type Stats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveRooms      int            `json:"active_rooms"`
	RoomConnections  map[string]int `json:"room_connections"`
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		ActiveRooms:     len(r.rooms),
		RoomConnections: make(map[string]int, len(r.rooms)),
	}
	for roomID, conns := range r.rooms {
		stats.TotalConnections += len(conns)
		stats.RoomConnections[roomID.String()] = len(conns)
	}
	return stats
}

func snapshot(conns map[string]Conn) []Conn {
	out := make([]Conn, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}
