package events

import (
	"encoding/json"
	"errors"
	"strings"
)

// ActionPick is the only inbound action clients may send.
const ActionPick = "pick"

var (
	ErrUnknownAction   = errors.New("unknown action")
	ErrMissingPlayerID = errors.New("missing player_id")
)

// Action is an inbound client message.
type Action struct {
	Action   string `json:"action"`
	PlayerID string `json:"player_id"`
}

// ParseAction decodes a client message. Anything other than a pick with a
// non-empty player_id is rejected with ErrUnknownAction or ErrMissingPlayerID.
func ParseAction(data []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return Action{}, ErrUnknownAction
	}
	if a.Action != ActionPick {
		return Action{}, ErrUnknownAction
	}
	a.PlayerID = strings.TrimSpace(a.PlayerID)
	if a.PlayerID == "" {
		return Action{}, ErrMissingPlayerID
	}
	return a, nil
}
