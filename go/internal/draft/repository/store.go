package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrRoomCodeTaken       = errors.New("room code already in use")
	ErrRoomNotWaiting      = errors.New("draft has already started")

	// ErrStaleTurn means the room advanced (or left drafting) between validation and commit.
	ErrStaleTurn = errors.New("pick is no longer current")
	// ErrPickConflict means the pick number or player is already taken in the room.
	ErrPickConflict = errors.New("pick conflicts with an existing pick")
)

// CommitPickRequest describes one pick to persist. Pick.PickNumber must equal
// the room's current_pick+1. When Complete is set the room moves to completed
// in the same transaction.
type CommitPickRequest struct {
	Pick     models.Pick
	Complete bool
}

// Store is the persistence boundary of the draft engine. Implementations must
// make CommitPick atomic: the pick row and the room advance land together or not at all.
type Store interface {
	CreateRoom(ctx context.Context, room models.Room, host models.Participant) error
	GetRoom(ctx context.Context, id uuid.UUID) (models.Room, error)
	GetRoomByCode(ctx context.Context, code string) (models.Room, error)
	// StartDraft moves a waiting room to drafting with current_pick 0.
	StartDraft(ctx context.Context, roomID uuid.UUID) (models.Room, error)

	// ListParticipants returns the room's participants ordered by draft position.
	ListParticipants(ctx context.Context, roomID uuid.UUID) ([]models.Participant, error)
	GetParticipant(ctx context.Context, roomID uuid.UUID, userName string) (models.Participant, error)
	// AddParticipant appends userName at the next dense draft position. An
	// existing participant with the same name is returned with created=false.
	AddParticipant(ctx context.Context, roomID uuid.UUID, userName string) (p models.Participant, created bool, err error)

	GetPlayer(ctx context.Context, id uuid.UUID) (models.Player, error)
	// ListPlayers returns the whole pool ordered by fantasy points, highest first.
	ListPlayers(ctx context.Context) ([]models.Player, error)
	CountPlayers(ctx context.Context) (int, error)
	InsertPlayers(ctx context.Context, players []models.Player) error

	IsPlayerDrafted(ctx context.Context, roomID, playerID uuid.UUID) (bool, error)
	// ListAvailablePlayers returns the pool minus the room's picks, fantasy points descending.
	ListAvailablePlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error)
	// ListPicks returns the room's picks ordered by pick number.
	ListPicks(ctx context.Context, roomID uuid.UUID) ([]models.PickDetail, error)
	CommitPick(ctx context.Context, req CommitPickRequest) (models.Room, error)
}
