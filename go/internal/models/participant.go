package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a member of exactly one room. DraftPosition is 1..N, dense and unique within the room.
type Participant struct {
	ID            uuid.UUID `json:"id"`
	RoomID        uuid.UUID `json:"-"`
	UserName      string    `json:"user_name"`
	DraftPosition int       `json:"draft_position"`
	IsHost        bool      `json:"is_host"`
	CreatedAt     time.Time `json:"-"`
}
