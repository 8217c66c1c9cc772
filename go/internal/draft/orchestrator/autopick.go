package orchestrator

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/pick"
	"github.com/mcdev12/draftroom/go/internal/metrics"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// AutoPickStrategy chooses a player for a drafter whose countdown ran out.
type AutoPickStrategy interface {
	Select(ctx context.Context, available []models.Player) (models.Player, bool)
}

// BestAvailableStrategy takes the highest fantasy_pts player, earliest first on ties.
type BestAvailableStrategy struct{}

func (BestAvailableStrategy) Select(ctx context.Context, available []models.Player) (models.Player, bool) {
	return pick.BestAvailable(available)
}

// AutoPick commits a pick for the current drafter when pickNumber is still
// open. It runs through the same commit path as a manual pick; a countdown
// that lost the race to a manual pick finds the turn moved on and does nothing.
func (c *Coordinator) AutoPick(ctx context.Context, roomID uuid.UUID, pickNumber int) {
	unlock := c.locks.lock(roomID)
	defer unlock()

	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("auto-pick could not load room")
		return
	}
	if room.Status != models.RoomStatusDrafting || room.CurrentPick != pickNumber-1 {
		log.Debug().
			Str("room_id", roomID.String()).
			Int("pick_number", pickNumber).
			Int("current_pick", room.CurrentPick).
			Msg("auto-pick skipped, turn already taken")
		return
	}

	participants, err := c.store.ListParticipants(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("auto-pick could not load participants")
		return
	}
	drafter, ok := drafterFor(participants, pickNumber)
	if !ok {
		log.Error().Str("room_id", roomID.String()).Int("pick_number", pickNumber).Msg("no participant holds the turn")
		return
	}

	available, err := c.store.ListAvailablePlayers(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("auto-pick could not load available players")
		return
	}
	choice, ok := c.strategy.Select(ctx, available)
	if !ok {
		log.Warn().Err(ErrNoPlayersAvailable).Str("room_id", roomID.String()).Msg("auto-pick has nothing to pick")
		return
	}

	log.Info().
		Str("room_id", roomID.String()).
		Str("user_name", drafter.UserName).
		Str("player_id", choice.ID.String()).
		Str("player", choice.Name).
		Int("pick_number", pickNumber).
		Msg("auto-picking for drafter")

	if err := c.applyPickLocked(ctx, room, participants, drafter.UserName, choice.ID, metrics.SourceAuto); err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Int("pick_number", pickNumber).Msg("auto-pick failed")
	}
}
