package models

import (
	"time"

	"github.com/google/uuid"
)

// Pick is one committed selection. Picks are append-only; PickNumber is 1-indexed
// and unique per room, as is PlayerID.
type Pick struct {
	ID            uuid.UUID `json:"id"`
	RoomID        uuid.UUID `json:"room_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	PickNumber    int       `json:"pick_number"`
	PickedAt      time.Time `json:"picked_at"`
}

// PickDetail is a pick joined with the drafting participant's name and the player.
type PickDetail struct {
	PickNumber int       `json:"pick_number"`
	UserName   string    `json:"user_name"`
	Player     Player    `json:"player"`
	PickedAt   time.Time `json:"picked_at"`
}

// Teams groups drafted players by user name in pick order.
type Teams map[string][]Player

// TeamsFromPicks builds the roster-by-user breakdown. Picks must be ordered by pick number.
func TeamsFromPicks(picks []PickDetail) Teams {
	teams := make(Teams)
	for _, p := range picks {
		teams[p.UserName] = append(teams[p.UserName], p.Player)
	}
	return teams
}
