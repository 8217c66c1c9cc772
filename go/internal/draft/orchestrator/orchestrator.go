package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/gateway"
	"github.com/mcdev12/draftroom/go/internal/draft/pick"
	"github.com/mcdev12/draftroom/go/internal/draft/repository"
	"github.com/mcdev12/draftroom/go/internal/metrics"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Broadcaster is the fan-out capability the coordinator emits events through.
type Broadcaster interface {
	BroadcastRoom(roomID uuid.UUID, e events.Event)
	SendToUser(roomID uuid.UUID, user string, e events.Event)
	SendToConnection(c gateway.Conn, e events.Event) error
}

// Sessions tracks which connections are live.
type Sessions interface {
	Register(c gateway.Conn)
	Unregister(c gateway.Conn) bool
}

// Notifier tells the results processor that a room finished drafting.
type Notifier interface {
	NotifyDraftComplete(ctx context.Context, roomID uuid.UUID, at time.Time) error
}

// Config tunes the coordinator.
type Config struct {
	// NotifyTimeout bounds a single draft_complete notification attempt.
	NotifyTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{NotifyTimeout: 10 * time.Second}
}

// Coordinator is the only writer of draft state. Every pick, manual or
// automatic, goes through applyPickLocked while the room's lock is held;
// different rooms never share a lock.
type Coordinator struct {
	store       repository.Store
	sessions    Sessions
	broadcaster Broadcaster
	notifier    Notifier
	strategy    AutoPickStrategy
	timer       *PickTimer
	clock       clockwork.Clock
	metrics     *metrics.Collector
	config      Config

	locks    *roomLocks
	notifyWg sync.WaitGroup

	// Connections that got a user_joined and still owe a user_left.
	announcedMu sync.Mutex
	announced   map[string]struct{}
}

func NewCoordinator(
	store repository.Store,
	sessions Sessions,
	broadcaster Broadcaster,
	notifier Notifier,
	clock clockwork.Clock,
	m *metrics.Collector,
	config Config,
) *Coordinator {
	c := &Coordinator{
		store:       store,
		sessions:    sessions,
		broadcaster: broadcaster,
		notifier:    notifier,
		strategy:    BestAvailableStrategy{},
		clock:       clock,
		metrics:     m,
		config:      config,
		locks:       newRoomLocks(),
		announced:   make(map[string]struct{}),
	}
	c.timer = NewPickTimer(clock, store, broadcaster, c.AutoPick)
	return c
}

// StartDraft moves a waiting room with enough participants to drafting and
// puts pick 1 on the clock.
func (c *Coordinator) StartDraft(ctx context.Context, roomID uuid.UUID) (models.Room, error) {
	unlock := c.locks.lock(roomID)
	defer unlock()

	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		return models.Room{}, err
	}
	if room.Status != models.RoomStatusWaiting {
		return models.Room{}, ErrDraftAlreadyStarted
	}

	participants, err := c.store.ListParticipants(ctx, roomID)
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to list participants: %w", err)
	}
	if len(participants) < MinParticipants {
		return models.Room{}, ErrNotEnoughParticipants
	}

	room, err = c.store.StartDraft(ctx, roomID)
	if errors.Is(err, repository.ErrRoomNotWaiting) {
		return models.Room{}, ErrDraftAlreadyStarted
	}
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to start draft: %w", err)
	}

	first, _ := drafterFor(participants, 1)
	c.broadcaster.BroadcastRoom(roomID, events.DraftStarted{CurrentPick: 1, CurrentTurn: first.UserName})
	c.timer.Start(roomID, 1, room.TurnTimeSec)
	c.metrics.DraftStarted()

	log.Info().
		Str("room_id", roomID.String()).
		Int("participants", len(participants)).
		Int("total_rounds", room.TotalRounds).
		Str("first_turn", first.UserName).
		Msg("draft started")
	return room, nil
}

// ApplyPick is the manual pick entry point. Rejections and failures are
// reported to the acting user's connections and returned.
func (c *Coordinator) ApplyPick(ctx context.Context, roomID uuid.UUID, userName string, playerID uuid.UUID) error {
	unlock := c.locks.lock(roomID)
	defer unlock()

	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			c.sendError(roomID, userName, repository.ErrRoomNotFound.Error())
			return repository.ErrRoomNotFound
		}
		c.sendError(roomID, userName, ErrPickFailed.Error())
		return fmt.Errorf("failed to load room: %w", err)
	}

	participants, err := c.store.ListParticipants(ctx, roomID)
	if err != nil {
		c.sendError(roomID, userName, ErrPickFailed.Error())
		return fmt.Errorf("failed to list participants: %w", err)
	}

	return c.applyPickLocked(ctx, room, participants, userName, playerID, metrics.SourceManual)
}

// applyPickLocked resolves, validates and commits one pick, then announces it.
// The caller holds the room lock and passes the room and roster it loaded under it.
func (c *Coordinator) applyPickLocked(
	ctx context.Context,
	room models.Room,
	participants []models.Participant,
	userName string,
	playerID uuid.UUID,
	source string,
) error {
	logger := log.With().
		Str("room_id", room.ID.String()).
		Str("user_name", userName).
		Str("player_id", playerID.String()).
		Str("source", source).
		Logger()

	participant, err := c.store.GetParticipant(ctx, room.ID, userName)
	if err != nil {
		return c.rejectLookup(room.ID, userName, err, repository.ErrParticipantNotFound)
	}

	player, err := c.store.GetPlayer(ctx, playerID)
	if err != nil {
		return c.rejectLookup(room.ID, userName, err, repository.ErrPlayerNotFound)
	}

	n := len(participants)
	if err := pick.Validate(ctx, room, participant, playerID, c.store.IsPlayerDrafted, n); err != nil {
		if pick.IsRejection(err) {
			logger.Debug().Err(err).Msg("pick rejected")
			c.metrics.PickRejected(err.Error())
			c.sendError(room.ID, userName, err.Error())
			return err
		}
		logger.Error().Err(err).Msg("pick validation failed")
		c.sendError(room.ID, userName, ErrPickFailed.Error())
		return err
	}

	c.timer.Cancel(room.ID)

	pickNumber := room.CurrentPick + 1
	complete := pickNumber >= pick.TotalPicks(room.TotalRounds, n)
	started := c.clock.Now()

	updated, err := c.store.CommitPick(ctx, repository.CommitPickRequest{
		Pick: models.Pick{
			ID:            uuid.New(),
			RoomID:        room.ID,
			ParticipantID: participant.ID,
			PlayerID:      player.ID,
			PickNumber:    pickNumber,
			PickedAt:      started.UTC(),
		},
		Complete: complete,
	})
	if err != nil {
		logger.Error().Err(err).Int("pick_number", pickNumber).Msg("failed to commit pick")
		c.sendError(room.ID, userName, ErrPickFailed.Error())
		// The turn is still open; put it back on the clock.
		c.timer.Start(room.ID, pickNumber, room.TurnTimeSec)
		return fmt.Errorf("failed to commit pick: %w", err)
	}
	c.metrics.PickCommitted(source, c.clock.Since(started).Seconds())

	logger.Info().
		Int("pick_number", pickNumber).
		Str("player", player.Name).
		Bool("complete", complete).
		Msg("pick committed")

	if complete {
		c.finishDraft(ctx, updated)
		return nil
	}

	next, _ := drafterFor(participants, pickNumber+1)
	c.broadcaster.BroadcastRoom(room.ID, events.PickMade{
		User:       userName,
		Player:     player,
		PickNumber: pickNumber,
		NextTurn:   next.UserName,
	})
	c.timer.Start(room.ID, pickNumber+1, room.TurnTimeSec)
	return nil
}

// finishDraft announces the final rosters and notifies the results processor.
// The room is already completed in the store; nothing here can undo that.
func (c *Coordinator) finishDraft(ctx context.Context, room models.Room) {
	teams := models.Teams{}
	picks, err := c.store.ListPicks(ctx, room.ID)
	if err != nil {
		log.Error().Err(err).Str("room_id", room.ID.String()).Msg("failed to load picks for final rosters")
	} else {
		teams = models.TeamsFromPicks(picks)
	}

	c.broadcaster.BroadcastRoom(room.ID, events.DraftComplete{Teams: teams})
	c.metrics.DraftCompleted()
	log.Info().Str("room_id", room.ID.String()).Int("picks", room.CurrentPick).Msg("draft completed")

	c.notifyComplete(room.ID)
}

// notifyComplete delivers the completion notice off the commit path.
func (c *Coordinator) notifyComplete(roomID uuid.UUID) {
	at := c.clock.Now()
	c.notifyWg.Add(1)
	go func() {
		defer c.notifyWg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.config.NotifyTimeout)
		defer cancel()

		if err := c.notifier.NotifyDraftComplete(ctx, roomID, at); err != nil {
			log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to notify draft completion")
		}
	}()
}

// Teams returns the roster-by-user breakdown for a room.
func (c *Coordinator) Teams(ctx context.Context, roomID uuid.UUID) (models.Teams, error) {
	picks, err := c.store.ListPicks(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return models.TeamsFromPicks(picks), nil
}

// Close stops every countdown and waits for pending notifications.
func (c *Coordinator) Close() {
	c.timer.Stop()
	c.notifyWg.Wait()
	log.Info().Msg("draft coordinator stopped")
}

func (c *Coordinator) sendError(roomID uuid.UUID, userName, message string) {
	c.broadcaster.SendToUser(roomID, userName, events.Error{Message: message})
}

// rejectLookup reports a failed participant or player lookup. notFound is the
// user-facing error when the lookup simply found nothing.
func (c *Coordinator) rejectLookup(roomID uuid.UUID, userName string, err, notFound error) error {
	if errors.Is(err, notFound) {
		c.metrics.PickRejected(notFound.Error())
		c.sendError(roomID, userName, notFound.Error())
		return notFound
	}
	log.Error().Err(err).Str("room_id", roomID.String()).Str("user_name", userName).Msg("pick lookup failed")
	c.sendError(roomID, userName, ErrPickFailed.Error())
	return err
}

// drafterFor finds the participant whose turn pickNumber is.
func drafterFor(participants []models.Participant, pickNumber int) (models.Participant, bool) {
	position := pick.NextDrafter(pickNumber, len(participants))
	if position == pick.NoDrafter {
		return models.Participant{}, false
	}
	for _, p := range participants {
		if p.DraftPosition == position {
			return p, true
		}
	}
	return models.Participant{}, false
}
