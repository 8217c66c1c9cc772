package rooms

import (
	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// CreateRoomRequest represents the data needed to create a new room. Zero
// TurnTimeSec and TotalRounds take the server defaults.
type CreateRoomRequest struct {
	Name        string `json:"name"`
	HostName    string `json:"host_name"`
	TurnTimeSec int    `json:"turn_time_sec"`
	TotalRounds int    `json:"total_rounds"`
}

type CreateRoomResponse struct {
	RoomID uuid.UUID `json:"room_id"`
	Code   string    `json:"code"`
}

type JoinRoomRequest struct {
	UserName string `json:"user_name"`
}

type JoinRoomResponse struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	DraftPosition int       `json:"draft_position"`
}

// RoomDetails is a room together with its participants in draft order.
type RoomDetails struct {
	models.Room
	Participants []models.Participant `json:"participants"`
}

type RoomCodeResponse struct {
	RoomID uuid.UUID `json:"room_id"`
}

type StartDraftResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PlayersResponse struct {
	Players []models.Player `json:"players"`
}

type PicksResponse struct {
	Picks []models.PickDetail `json:"picks"`
}

type TeamsResponse struct {
	Teams models.Teams `json:"teams"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
