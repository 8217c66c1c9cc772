package events

import (
	"time"

	"github.com/google/uuid"
)

// ResultsMessage is published once per completed room for the results processor.
type ResultsMessage struct {
	Event     string    `json:"event"`
	RoomID    uuid.UUID `json:"room_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewResultsMessage(roomID uuid.UUID, at time.Time) ResultsMessage {
	return ResultsMessage{
		Event:     NameDraftComplete,
		RoomID:    roomID,
		Timestamp: at.UTC(),
	}
}
