package events

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/draftroom/go/internal/models"
)

// Event names as they appear on the wire.
const (
	NameUserJoined    = "user_joined"
	NameUserLeft      = "user_left"
	NameDraftStarted  = "draft_started"
	NameTimerTick     = "timer_tick"
	NamePickMade      = "pick_made"
	NameDraftComplete = "draft_complete"
	NameError         = "error"
	NameSync          = "sync"
)

// Event is the closed set of messages pushed to draft clients. Only types in
// this package implement it.
type Event interface {
	Name() string
	isEvent()
}

// UserJoined is broadcast when a participant joins or connects.
type UserJoined struct {
	User         string               `json:"user"`
	Participants []models.Participant `json:"participants"`
}

// UserLeft is broadcast when a connection for a participant goes away.
type UserLeft struct {
	User         string               `json:"user"`
	Participants []models.Participant `json:"participants"`
}

// DraftStarted announces the pick that is now on the clock.
type DraftStarted struct {
	CurrentPick int    `json:"current_pick"`
	CurrentTurn string `json:"current_turn"`
}

type TimerTick struct {
	SecondsLeft int `json:"seconds_left"`
}

// PickMade is broadcast after every committed pick except the last one.
type PickMade struct {
	User       string        `json:"user"`
	Player     models.Player `json:"player"`
	PickNumber int           `json:"pick_number"`
	NextTurn   string        `json:"next_turn"`
}

// DraftComplete carries the final roster of every participant.
type DraftComplete struct {
	Teams models.Teams `json:"teams"`
}

// Error is only ever sent to the user that caused it.
type Error struct {
	Message string `json:"message"`
}

// Sync is the full state snapshot a connection receives right after it is accepted.
type Sync struct {
	Room             models.Room          `json:"room"`
	Participants     []models.Participant `json:"participants"`
	Picks            []models.PickDetail  `json:"picks"`
	AvailablePlayers []models.Player      `json:"available_players"`
}

func (UserJoined) Name() string    { return NameUserJoined }
func (UserLeft) Name() string      { return NameUserLeft }
func (DraftStarted) Name() string  { return NameDraftStarted }
func (TimerTick) Name() string     { return NameTimerTick }
func (PickMade) Name() string      { return NamePickMade }
func (DraftComplete) Name() string { return NameDraftComplete }
func (Error) Name() string         { return NameError }
func (Sync) Name() string          { return NameSync }

func (UserJoined) isEvent()    {}
func (UserLeft) isEvent()      {}
func (DraftStarted) isEvent()  {}
func (TimerTick) isEvent()     {}
func (PickMade) isEvent()      {}
func (DraftComplete) isEvent() {}
func (Error) isEvent()         {}
func (Sync) isEvent()          {}

// Encode renders e as a flat JSON object whose "event" key holds e.Name().
func Encode(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", e.Name(), err)
	}

	name, err := json.Marshal(e.Name())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(name) + 10)
	buf.WriteString(`{"event":`)
	buf.Write(name)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
