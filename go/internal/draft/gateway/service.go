package gateway

import (
	"context"
	"net/http"

	"github.com/mcdev12/draftroom/go/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Service owns the connection registry and broadcaster and exposes the
// websocket and state routes.
type Service struct {
	config      ConnectionConfig
	registry    *Registry
	broadcaster *Broadcaster
}

func NewService(config ConnectionConfig, m *metrics.Collector) *Service {
	registry := NewRegistry(m)
	return &Service{
		config:      config,
		registry:    registry,
		broadcaster: NewBroadcaster(registry, m),
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

func (s *Service) Broadcaster() *Broadcaster {
	return s.broadcaster
}

// RegisterRoutes registers the WebSocket and state HTTP routes. ctx bounds
// the lifetime of every session accepted through the mux.
func (s *Service) RegisterRoutes(ctx context.Context, mux *http.ServeMux, sessions SessionHandler, state StateProvider) {
	wsHandler := NewWebSocketHandler(ctx, sessions, s.config)
	stateHandler := NewStateHandler(state, s.registry)

	mux.HandleFunc("GET /ws/{room_id}/{user_name}", wsHandler.HandleRoomConnection)
	mux.HandleFunc("GET /ws/stats", stateHandler.HandleConnectionStats)
	mux.HandleFunc("GET /api/rooms/{room_id}/state", stateHandler.HandleGetRoomState)
	log.Info().Msg("draft gateway routes registered")
}

// CloseAll closes every live connection, used on shutdown.
func (s *Service) CloseAll() {
	conns := s.registry.All()
	for _, c := range conns {
		c.Close()
	}
	log.Info().Int("connections", len(conns)).Msg("closed all draft connections")
}
