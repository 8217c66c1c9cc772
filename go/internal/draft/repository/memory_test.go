package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(t *testing.T, s *MemoryStore, code string) models.Room {
	t.Helper()
	room := models.Room{
		ID:          uuid.New(),
		Name:        "Sunday League",
		Code:        code,
		Status:      models.RoomStatusWaiting,
		TotalRounds: 2,
		TurnTimeSec: 30,
	}
	host := models.Participant{ID: uuid.New(), UserName: "alice", DraftPosition: 1, IsHost: true}
	require.NoError(t, s.CreateRoom(context.Background(), room, host))
	return room
}

func seedPlayers(t *testing.T, s *MemoryStore, pts ...float64) []models.Player {
	t.Helper()
	players := make([]models.Player, len(pts))
	for i, p := range pts {
		players[i] = models.Player{ID: uuid.New(), Name: "player", Team: "KC", Position: "WR", FantasyPts: p}
	}
	require.NoError(t, s.InsertPlayers(context.Background(), players))
	return players
}

func TestMemoryStore_CreateRoomRejectsDuplicateCode(t *testing.T) {
	s := NewMemoryStore()
	newRoom(t, s, "ABCD")

	err := s.CreateRoom(context.Background(), models.Room{ID: uuid.New(), Code: "ABCD"}, models.Participant{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrRoomCodeTaken)

	got, err := s.GetRoomByCode(context.Background(), "ABCD")
	require.NoError(t, err)
	assert.Equal(t, "Sunday League", got.Name)

	_, err = s.GetRoomByCode(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemoryStore_AddParticipant(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	room := newRoom(t, s, "JOIN")

	bob, created, err := s.AddParticipant(ctx, room.ID, "bob")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, bob.DraftPosition)

	again, created, err := s.AddParticipant(ctx, room.ID, "bob")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, bob.ID, again.ID)

	carol, _, err := s.AddParticipant(ctx, room.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, 3, carol.DraftPosition)

	participants, err := s.ListParticipants(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, participants, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{
		participants[0].UserName, participants[1].UserName, participants[2].UserName,
	})

	_, err = s.StartDraft(ctx, room.ID)
	require.NoError(t, err)
	_, _, err = s.AddParticipant(ctx, room.ID, "dave")
	assert.ErrorIs(t, err, ErrRoomNotWaiting)

	_, _, err = s.AddParticipant(ctx, uuid.New(), "dave")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemoryStore_StartDraft(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	room := newRoom(t, s, "STRT")

	started, err := s.StartDraft(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusDrafting, started.Status)
	assert.Equal(t, 0, started.CurrentPick)

	_, err = s.StartDraft(ctx, room.ID)
	assert.ErrorIs(t, err, ErrRoomNotWaiting)
}

func TestMemoryStore_CommitPick(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	room := newRoom(t, s, "PICK")
	bob, _, err := s.AddParticipant(ctx, room.ID, "bob")
	require.NoError(t, err)
	players := seedPlayers(t, s, 10, 30, 20)

	alice, err := s.GetParticipant(ctx, room.ID, "alice")
	require.NoError(t, err)

	// not drafting yet
	_, err = s.CommitPick(ctx, CommitPickRequest{Pick: models.Pick{RoomID: room.ID, ParticipantID: alice.ID, PlayerID: players[0].ID, PickNumber: 1}})
	assert.ErrorIs(t, err, ErrStaleTurn)

	_, err = s.StartDraft(ctx, room.ID)
	require.NoError(t, err)

	updated, err := s.CommitPick(ctx, CommitPickRequest{Pick: models.Pick{RoomID: room.ID, ParticipantID: alice.ID, PlayerID: players[1].ID, PickNumber: 1}})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentPick)

	t.Run("stale pick number", func(t *testing.T) {
		_, err := s.CommitPick(ctx, CommitPickRequest{Pick: models.Pick{RoomID: room.ID, ParticipantID: bob.ID, PlayerID: players[0].ID, PickNumber: 1}})
		assert.ErrorIs(t, err, ErrStaleTurn)
	})

	t.Run("player already drafted", func(t *testing.T) {
		_, err := s.CommitPick(ctx, CommitPickRequest{Pick: models.Pick{RoomID: room.ID, ParticipantID: bob.ID, PlayerID: players[1].ID, PickNumber: 2}})
		assert.ErrorIs(t, err, ErrPickConflict)
	})

	final, err := s.CommitPick(ctx, CommitPickRequest{
		Pick:     models.Pick{RoomID: room.ID, ParticipantID: bob.ID, PlayerID: players[0].ID, PickNumber: 2},
		Complete: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusCompleted, final.Status)
	assert.Equal(t, 2, final.CurrentPick)

	picks, err := s.ListPicks(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, picks, 2)
	assert.Equal(t, "alice", picks[0].UserName)
	assert.Equal(t, players[1].ID, picks[0].Player.ID)
	assert.Equal(t, "bob", picks[1].UserName)
	assert.Equal(t, 2, picks[1].PickNumber)

	available, err := s.ListAvailablePlayers(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, players[2].ID, available[0].ID)
}

func TestMemoryStore_ConcurrentCommitSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	room := newRoom(t, s, "RACE")
	players := seedPlayers(t, s, 5, 6, 7, 8, 9, 10, 11, 12)
	alice, err := s.GetParticipant(ctx, room.ID, "alice")
	require.NoError(t, err)
	_, err = s.StartDraft(ctx, room.ID)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, p := range players {
		wg.Add(1)
		go func(playerID uuid.UUID) {
			defer wg.Done()
			_, err := s.CommitPick(ctx, CommitPickRequest{Pick: models.Pick{RoomID: room.ID, ParticipantID: alice.ID, PlayerID: playerID, PickNumber: 1}})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(p.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	got, err := s.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentPick)
}

func TestMemoryStore_ListPlayersOrderedByScore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	players := seedPlayers(t, s, 12.5, 40, 12.5, 3)

	got, err := s.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, players[1].ID, got[0].ID)
	// ties keep insertion order
	assert.Equal(t, players[0].ID, got[1].ID)
	assert.Equal(t, players[2].ID, got[2].ID)
	assert.Equal(t, players[3].ID, got[3].ID)

	n, err := s.CountPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = s.GetPlayer(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
