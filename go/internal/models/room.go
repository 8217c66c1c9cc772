package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus defines the lifecycle state of a draft room.
type RoomStatus string

const (
	RoomStatusWaiting   RoomStatus = "waiting"
	RoomStatusDrafting  RoomStatus = "drafting"
	RoomStatusCompleted RoomStatus = "completed"
)

// Room is a draft room shared by a small set of participants.
// CurrentPick counts the picks committed so far and starts at 0.
type Room struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Status      RoomStatus `json:"status"`
	CurrentPick int        `json:"current_pick"`
	TotalRounds int        `json:"total_rounds"`
	TurnTimeSec int        `json:"turn_time_sec"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TotalPicks returns the number of picks a room with n participants makes before completing.
func (r Room) TotalPicks(n int) int {
	return r.TotalRounds * n
}

// TurnDuration returns the configured countdown for a single pick.
func (r Room) TurnDuration() time.Duration {
	return time.Duration(r.TurnTimeSec) * time.Second
}
