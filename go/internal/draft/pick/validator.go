package pick

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// DraftedFunc reports whether playerID has already been picked in roomID.
type DraftedFunc func(ctx context.Context, roomID, playerID uuid.UUID) (bool, error)

// Validate decides whether participant may pick playerID right now. Checks run
// in a fixed order and the first failure wins:
//  1. the room is drafting
//  2. participant holds the turn for pick current_pick+1
//  3. the player has not been drafted in this room
//
// A nil return accepts the pick. Rejections are ErrDraftNotActive,
// ErrNotYourTurn or ErrPlayerUnavailable; any other error comes from isDrafted.
func Validate(ctx context.Context, room models.Room, participant models.Participant, playerID uuid.UUID, isDrafted DraftedFunc, n int) error {
	if room.Status != models.RoomStatusDrafting {
		return ErrDraftNotActive
	}

	if participant.DraftPosition != NextDrafter(room.CurrentPick+1, n) {
		return ErrNotYourTurn
	}

	drafted, err := isDrafted(ctx, room.ID, playerID)
	if err != nil {
		return fmt.Errorf("failed to check player availability: %w", err)
	}
	if drafted {
		return ErrPlayerUnavailable
	}

	return nil
}
