package orchestrator

import "errors"

var (
	ErrDraftAlreadyStarted   = errors.New("draft has already started")
	ErrNotEnoughParticipants = errors.New("need at least 2 participants to start")
	ErrInvalidPlayerID       = errors.New("invalid player id")
	ErrNoPlayersAvailable    = errors.New("no players available")
	ErrPickFailed            = errors.New("pick failed")
)

// MinParticipants is the smallest room that may start drafting.
const MinParticipants = 2
