package rooms

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/draft/repository"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 16

type Handler struct {
	app *App
}

func NewHandler(app *App) *Handler {
	return &Handler{app: app}
}

// RegisterRoutes wires the room endpoints onto mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/rooms", h.HandleCreateRoom)
	mux.HandleFunc("GET /api/rooms/{room_id}", h.HandleGetRoom)
	mux.HandleFunc("POST /api/rooms/{room_id}/join", h.HandleJoinRoom)
	mux.HandleFunc("POST /api/rooms/{room_id}/start", h.HandleStartDraft)
	mux.HandleFunc("GET /api/rooms/{room_id}/picks", h.HandleListPicks)
	mux.HandleFunc("GET /api/rooms/{room_id}/teams", h.HandleTeams)
	mux.HandleFunc("GET /api/room-codes/{code}", h.HandleGetRoomByCode)
	mux.HandleFunc("GET /api/players", h.HandleListPlayers)
	mux.HandleFunc("GET /api/players/rooms/{room_id}/available", h.HandleListAvailablePlayers)

	log.Info().Msg("room routes registered")
}

// HandleCreateRoom handles POST /api/rooms
func (h *Handler) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if !decodeBody(w, r, &req) {
		return
	}

	room, err := h.app.CreateRoom(r.Context(), req)
	if err != nil {
		writeAppError(w, err, "failed to create room")
		return
	}
	writeJSON(w, http.StatusOK, CreateRoomResponse{RoomID: room.ID, Code: room.Code})
}

// HandleGetRoom handles GET /api/rooms/{room_id}
func (h *Handler) HandleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDFromPath(w, r)
	if !ok {
		return
	}

	details, err := h.app.GetRoom(r.Context(), roomID)
	if err != nil {
		writeAppError(w, err, "failed to get room")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// HandleGetRoomByCode handles GET /api/room-codes/{code}
func (h *Handler) HandleGetRoomByCode(w http.ResponseWriter, r *http.Request) {
	room, err := h.app.GetRoomByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeAppError(w, err, "failed to look up room code")
		return
	}
	writeJSON(w, http.StatusOK, RoomCodeResponse{RoomID: room.ID})
}

// HandleJoinRoom handles POST /api/rooms/{room_id}/join
func (h *Handler) HandleJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDFromPath(w, r)
	if !ok {
		return
	}
	var req JoinRoomRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.app.JoinRoom(r.Context(), roomID, req)
	if err != nil {
		writeAppError(w, err, "failed to join room")
		return
	}
	writeJSON(w, http.StatusOK, JoinRoomResponse{ParticipantID: p.ID, DraftPosition: p.DraftPosition})
}

// HandleStartDraft handles POST /api/rooms/{room_id}/start
func (h *Handler) HandleStartDraft(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDFromPath(w, r)
	if !ok {
		return
	}

	if _, err := h.app.StartDraft(r.Context(), roomID); err != nil {
		writeAppError(w, err, "failed to start draft")
		return
	}
	writeJSON(w, http.StatusOK, StartDraftResponse{Success: true, Message: "Draft started"})
}

// HandleListPicks handles GET /api/rooms/{room_id}/picks
func (h *Handler) HandleListPicks(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDFromPath(w, r)
	if !ok {
		return
	}

	picks, err := h.app.ListPicks(r.Context(), roomID)
	if err != nil {
		writeAppError(w, err, "failed to list picks")
		return
	}
	writeJSON(w, http.StatusOK, PicksResponse{Picks: picks})
}

// HandleTeams handles GET /api/rooms/{room_id}/teams
func (h *Handler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDFromPath(w, r)
	if !ok {
		return
	}

	teams, err := h.app.Teams(r.Context(), roomID)
	if err != nil {
		writeAppError(w, err, "failed to build teams")
		return
	}
	writeJSON(w, http.StatusOK, TeamsResponse{Teams: teams})
}

// HandleListPlayers handles GET /api/players
func (h *Handler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.app.ListPlayers(r.Context())
	if err != nil {
		writeAppError(w, err, "failed to list players")
		return
	}
	writeJSON(w, http.StatusOK, PlayersResponse{Players: players})
}

// HandleListAvailablePlayers handles GET /api/players/rooms/{room_id}/available
func (h *Handler) HandleListAvailablePlayers(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDFromPath(w, r)
	if !ok {
		return
	}

	players, err := h.app.ListAvailablePlayers(r.Context(), roomID)
	if err != nil {
		writeAppError(w, err, "failed to list available players")
		return
	}
	writeJSON(w, http.StatusOK, PlayersResponse{Players: players})
}

func roomIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	roomID, err := uuid.Parse(r.PathValue("room_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid room ID"})
		return uuid.Nil, false
	}
	return roomID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"})
		return false
	}
	return true
}

// writeAppError maps app and engine errors onto HTTP status codes.
func writeAppError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Room not found"})
	case errors.Is(err, repository.ErrRoomNotWaiting), errors.Is(err, orchestrator.ErrDraftAlreadyStarted):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Draft has already started"})
	case errors.Is(err, orchestrator.ErrNotEnoughParticipants):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Need at least 2 participants to start"})
	case errors.Is(err, ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
	default:
		log.Error().Err(err).Msg(msg)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: msg})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
