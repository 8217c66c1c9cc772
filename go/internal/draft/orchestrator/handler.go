package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/gateway"
	"github.com/mcdev12/draftroom/go/internal/draft/repository"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// CheckMembership allows a connection only for an existing participant of an existing room.
func (c *Coordinator) CheckMembership(ctx context.Context, roomID uuid.UUID, userName string) error {
	if _, err := c.store.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return repository.ErrRoomNotFound
		}
		return err
	}
	if _, err := c.store.GetParticipant(ctx, roomID, userName); err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return repository.ErrParticipantNotFound
		}
		return err
	}
	return nil
}

// OnConnect registers conn, sends it the full room snapshot and announces the
// user to the room. A connection arriving mid-draft also learns whose turn it is.
//
// The room lock is held throughout so no pick lands between the snapshot
// reads, and no pick_made reaches conn ahead of its sync.
func (c *Coordinator) OnConnect(ctx context.Context, conn gateway.Conn) error {
	roomID, userName := conn.RoomID(), conn.UserName()

	unlock := c.locks.lock(roomID)
	defer unlock()

	c.sessions.Register(conn)

	snapshot, err := c.Snapshot(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}
	if err := c.broadcaster.SendToConnection(conn, snapshot); err != nil {
		return fmt.Errorf("failed to send snapshot: %w", err)
	}

	c.broadcaster.BroadcastRoom(roomID, events.UserJoined{User: userName, Participants: snapshot.Participants})
	c.markAnnounced(conn)

	if snapshot.Room.Status == models.RoomStatusDrafting {
		c.resumeTurnLocked(ctx, roomID, userName)
	}
	return nil
}

// ResumeTurn re-announces the open pick. If userName holds the turn and no
// countdown is running for the room, one is started; this recovers the clock
// after a restart without letting a reconnect reset a running countdown.
func (c *Coordinator) ResumeTurn(ctx context.Context, roomID uuid.UUID, userName string) {
	unlock := c.locks.lock(roomID)
	defer unlock()

	c.resumeTurnLocked(ctx, roomID, userName)
}

func (c *Coordinator) resumeTurnLocked(ctx context.Context, roomID uuid.UUID, userName string) {
	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to load room for turn resume")
		return
	}
	if room.Status != models.RoomStatusDrafting {
		return
	}

	participants, err := c.store.ListParticipants(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to load participants for turn resume")
		return
	}

	pickNumber := room.CurrentPick + 1
	drafter, _ := drafterFor(participants, pickNumber)
	c.broadcaster.BroadcastRoom(roomID, events.DraftStarted{CurrentPick: pickNumber, CurrentTurn: drafter.UserName})

	if drafter.UserName != userName {
		return
	}
	if _, running := c.timer.Active(roomID); running {
		return
	}
	log.Info().
		Str("room_id", roomID.String()).
		Str("user_name", userName).
		Int("pick_number", pickNumber).
		Msg("restarting countdown for reconnected drafter")
	c.timer.Start(roomID, pickNumber, room.TurnTimeSec)
}

// OnAction handles one inbound client message.
func (c *Coordinator) OnAction(ctx context.Context, conn gateway.Conn, message []byte) {
	roomID, userName := conn.RoomID(), conn.UserName()

	action, err := events.ParseAction(message)
	if err != nil {
		log.Debug().Err(err).Str("room_id", roomID.String()).Str("user_name", userName).Msg("rejected client message")
		c.sendError(roomID, userName, err.Error())
		return
	}

	if err := c.HandlePick(ctx, roomID, userName, action.PlayerID); err != nil {
		log.Debug().Err(err).Str("room_id", roomID.String()).Str("user_name", userName).Msg("pick not applied")
	}
}

// HandlePick parses a client supplied player id and applies the pick.
func (c *Coordinator) HandlePick(ctx context.Context, roomID uuid.UUID, userName, rawPlayerID string) error {
	playerID, err := uuid.Parse(rawPlayerID)
	if err != nil {
		c.sendError(roomID, userName, ErrInvalidPlayerID.Error())
		return ErrInvalidPlayerID
	}
	return c.ApplyPick(ctx, roomID, userName, playerID)
}

// OnDisconnect forgets conn and tells the room if conn was ever announced.
// The registry may already have dropped a conn whose writes failed, so the
// announcement does not depend on Unregister. Repeated or unknown
// disconnects do nothing.
func (c *Coordinator) OnDisconnect(ctx context.Context, conn gateway.Conn) {
	c.sessions.Unregister(conn)
	if !c.forgetAnnounced(conn) {
		return
	}

	participants, err := c.store.ListParticipants(ctx, conn.RoomID())
	if err != nil {
		log.Error().Err(err).Str("room_id", conn.RoomID().String()).Msg("failed to load participants after disconnect")
		participants = []models.Participant{}
	}
	c.broadcaster.BroadcastRoom(conn.RoomID(), events.UserLeft{User: conn.UserName(), Participants: participants})
}

func (c *Coordinator) markAnnounced(conn gateway.Conn) {
	c.announcedMu.Lock()
	defer c.announcedMu.Unlock()
	c.announced[conn.ID()] = struct{}{}
}

// forgetAnnounced reports whether conn had been announced, and forgets it.
func (c *Coordinator) forgetAnnounced(conn gateway.Conn) bool {
	c.announcedMu.Lock()
	defer c.announcedMu.Unlock()
	if _, ok := c.announced[conn.ID()]; !ok {
		return false
	}
	delete(c.announced, conn.ID())
	return true
}

// Snapshot is the resync payload: room, roster, picks so far and the players
// still on the board, best first.
func (c *Coordinator) Snapshot(ctx context.Context, roomID uuid.UUID) (events.Sync, error) {
	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		return events.Sync{}, err
	}
	participants, err := c.store.ListParticipants(ctx, roomID)
	if err != nil {
		return events.Sync{}, fmt.Errorf("failed to list participants: %w", err)
	}
	picks, err := c.store.ListPicks(ctx, roomID)
	if err != nil {
		return events.Sync{}, fmt.Errorf("failed to list picks: %w", err)
	}
	available, err := c.store.ListAvailablePlayers(ctx, roomID)
	if err != nil {
		return events.Sync{}, fmt.Errorf("failed to list available players: %w", err)
	}

	return events.Sync{
		Room:             room,
		Participants:     participants,
		Picks:            picks,
		AvailablePlayers: available,
	}, nil
}
