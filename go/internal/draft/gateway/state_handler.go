package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/repository"
	"github.com/rs/zerolog/log"
)

// StateProvider builds the resync snapshot for a room.
type StateProvider interface {
	Snapshot(ctx context.Context, roomID uuid.UUID) (events.Sync, error)
}

// StateHandler serves room snapshots over plain HTTP for clients that poll
// instead of holding a socket.
type StateHandler struct {
	stateProvider StateProvider
	registry      *Registry
}

func NewStateHandler(provider StateProvider, registry *Registry) *StateHandler {
	return &StateHandler{
		stateProvider: provider,
		registry:      registry,
	}
}

// HandleGetRoomState handles GET /api/rooms/{room_id}/state
func (h *StateHandler) HandleGetRoomState(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.PathValue("room_id"))
	if err != nil {
		http.Error(w, "Invalid room ID format", http.StatusBadRequest)
		return
	}

	state, err := h.stateProvider.Snapshot(r.Context(), roomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to get room state")
		http.Error(w, "Failed to get room state", http.StatusInternalServerError)
		return
	}

	data, err := events.Encode(state)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode room state response")
		http.Error(w, "Failed to encode room state", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// HandleConnectionStats returns statistics about active connections
func (h *StateHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.registry.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}
