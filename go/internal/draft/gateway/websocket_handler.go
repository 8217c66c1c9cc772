package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// SessionHandler is the draft engine side of a websocket session.
type SessionHandler interface {
	// CheckMembership returns an error when userName may not connect to roomID.
	CheckMembership(ctx context.Context, roomID uuid.UUID, userName string) error
	OnConnect(ctx context.Context, conn Conn) error
	OnAction(ctx context.Context, conn Conn, message []byte)
	OnDisconnect(ctx context.Context, conn Conn)
}

// WebSocketHandler handles WebSocket upgrade requests for draft rooms
type WebSocketHandler struct {
	sessions SessionHandler
	upgrader websocket.Upgrader
	config   ConnectionConfig
	// baseCtx outlives the upgrade request; sessions run until the server stops.
	baseCtx context.Context
}

func NewWebSocketHandler(ctx context.Context, sessions SessionHandler, config ConnectionConfig) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:  config,
		baseCtx: ctx,
	}
}

// HandleRoomConnection handles GET /ws/{room_id}/{user_name}. Unknown rooms and
// users are accepted and then closed with a policy violation.
func (h *WebSocketHandler) HandleRoomConnection(w http.ResponseWriter, r *http.Request) {
	roomIDStr := r.PathValue("room_id")
	userName := r.PathValue("user_name")

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		log.Warn().Err(err).Str("room_id", roomIDStr).Msg("failed to upgrade WebSocket connection")
		return
	}

	roomID, err := uuid.Parse(roomIDStr)
	if err != nil {
		closeWithPolicyViolation(ws, "invalid room id", h.config.WriteTimeout)
		return
	}

	if err := h.sessions.CheckMembership(r.Context(), roomID, userName); err != nil {
		log.Debug().
			Err(err).
			Str("room_id", roomID.String()).
			Str("user_name", userName).
			Msg("rejecting WebSocket connection")
		closeWithPolicyViolation(ws, err.Error(), h.config.WriteTimeout)
		return
	}

	conn := newConnection(ws, roomID, userName, h.config)
	go conn.writePump()

	if err := h.sessions.OnConnect(h.baseCtx, conn); err != nil {
		log.Error().
			Err(err).
			Str("connection_id", conn.ID()).
			Str("room_id", roomID.String()).
			Msg("failed to open draft session")
		h.sessions.OnDisconnect(h.baseCtx, conn)
		conn.Close()
		return
	}

	log.Info().
		Str("connection_id", conn.ID()).
		Str("room_id", roomID.String()).
		Str("user_name", userName).
		Msg("WebSocket connection established")

	go func() {
		conn.readPump(func(message []byte) {
			h.sessions.OnAction(h.baseCtx, conn, message)
		})
		h.sessions.OnDisconnect(h.baseCtx, conn)

		log.Info().
			Str("connection_id", conn.ID()).
			Str("room_id", roomID.String()).
			Str("user_name", userName).
			Dur("connected_for", time.Since(conn.connectedAt)).
			Msg("WebSocket connection closed")
	}()
}
