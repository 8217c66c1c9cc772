package pick

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftedSet(ids ...uuid.UUID) DraftedFunc {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(_ context.Context, _, playerID uuid.UUID) (bool, error) {
		return set[playerID], nil
	}
}

func TestValidate(t *testing.T) {
	taken := uuid.New()
	free := uuid.New()
	drafting := models.Room{ID: uuid.New(), Status: models.RoomStatusDrafting, CurrentPick: 4}

	cases := []struct {
		name     string
		room     models.Room
		position int
		playerID uuid.UUID
		wantErr  error
	}{
		{
			name:     "accepts the drafter on the clock",
			room:     drafting,
			position: 4, // pick 5 of a 4-team snake belongs to position 4
			playerID: free,
		},
		{
			name:     "rejects when the room is waiting",
			room:     models.Room{Status: models.RoomStatusWaiting},
			position: 1,
			playerID: free,
			wantErr:  ErrDraftNotActive,
		},
		{
			name:     "rejects when the room is completed",
			room:     models.Room{Status: models.RoomStatusCompleted, CurrentPick: 8},
			position: 1,
			playerID: free,
			wantErr:  ErrDraftNotActive,
		},
		{
			name:     "rejects out of turn",
			room:     drafting,
			position: 1,
			playerID: free,
			wantErr:  ErrNotYourTurn,
		},
		{
			name:     "turn check wins over availability",
			room:     drafting,
			position: 2,
			playerID: taken,
			wantErr:  ErrNotYourTurn,
		},
		{
			name:     "rejects a drafted player",
			room:     drafting,
			position: 4,
			playerID: taken,
			wantErr:  ErrPlayerUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			participant := models.Participant{ID: uuid.New(), DraftPosition: tc.position}
			err := Validate(context.Background(), tc.room, participant, tc.playerID, draftedSet(taken), 4)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
			assert.True(t, IsRejection(err))
		})
	}
}

func TestValidateSurfacesLookupFailure(t *testing.T) {
	boom := errors.New("connection reset")
	room := models.Room{ID: uuid.New(), Status: models.RoomStatusDrafting}
	participant := models.Participant{DraftPosition: 1}

	err := Validate(context.Background(), room, participant, uuid.New(), func(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
		return false, boom
	}, 2)

	require.ErrorIs(t, err, boom)
	assert.False(t, IsRejection(err))
}
