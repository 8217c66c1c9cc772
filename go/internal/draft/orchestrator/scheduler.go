package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// TurnReader loads the authoritative room state the countdown checks against.
type TurnReader interface {
	GetRoom(ctx context.Context, id uuid.UUID) (models.Room, error)
}

// ExpireFunc is called when a countdown runs out while its pick is still open.
type ExpireFunc func(ctx context.Context, roomID uuid.UUID, pickNumber int)

type countdown struct {
	pickNumber int
	cancel     context.CancelFunc
}

// PickTimer runs at most one countdown per room. A countdown belongs to the
// pick number it was started for and re-reads the room before every tick and
// before expiry; once current_pick has moved past pickNumber-1 it exits
// without doing anything, whether or not it was cancelled.
type PickTimer struct {
	clock       clockwork.Clock
	reader      TurnReader
	broadcaster Broadcaster
	onExpire    ExpireFunc

	mu      sync.Mutex
	active  map[uuid.UUID]*countdown
	stopped bool
	wg      sync.WaitGroup

	// ctx is the parent of every countdown and is cancelled by Stop.
	ctx    context.Context
	cancel context.CancelFunc
}

func NewPickTimer(clock clockwork.Clock, reader TurnReader, broadcaster Broadcaster, onExpire ExpireFunc) *PickTimer {
	ctx, cancel := context.WithCancel(context.Background())
	return &PickTimer{
		clock:       clock,
		reader:      reader,
		broadcaster: broadcaster,
		onExpire:    onExpire,
		active:      make(map[uuid.UUID]*countdown),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins a countdown of seconds for pickNumber, replacing any countdown
// already running for the room.
func (t *PickTimer) Start(roomID uuid.UUID, pickNumber, seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	if existing, ok := t.active[roomID]; ok {
		existing.cancel()
		log.Debug().
			Str("room_id", roomID.String()).
			Int("pick_number", existing.pickNumber).
			Msg("replaced existing countdown")
	}

	ctx, cancel := context.WithCancel(t.ctx)
	cd := &countdown{pickNumber: pickNumber, cancel: cancel}
	t.active[roomID] = cd

	t.wg.Add(1)
	go t.run(ctx, roomID, cd, seconds)

	log.Debug().
		Str("room_id", roomID.String()).
		Int("pick_number", pickNumber).
		Int("seconds", seconds).
		Msg("countdown started")
}

// Cancel stops the room's countdown. It is a no-op when none is running.
func (t *PickTimer) Cancel(roomID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cd, ok := t.active[roomID]; ok {
		cd.cancel()
		delete(t.active, roomID)
		log.Debug().
			Str("room_id", roomID.String()).
			Int("pick_number", cd.pickNumber).
			Msg("cancelled countdown")
	}
}

// Active reports the pick number the room's countdown is running for.
func (t *PickTimer) Active(roomID uuid.UUID) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cd, ok := t.active[roomID]
	if !ok {
		return 0, false
	}
	return cd.pickNumber, true
}

// Stop cancels every countdown and waits for them to exit. Start is a no-op afterwards.
func (t *PickTimer) Stop() {
	t.mu.Lock()
	t.stopped = true
	for roomID, cd := range t.active {
		cd.cancel()
		delete(t.active, roomID)
	}
	t.cancel()
	t.mu.Unlock()

	t.wg.Wait()
}

func (t *PickTimer) run(ctx context.Context, roomID uuid.UUID, cd *countdown, seconds int) {
	defer t.wg.Done()
	defer t.release(roomID, cd)

	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for remaining := seconds; remaining > 0; remaining-- {
		switch t.turnState(ctx, roomID, cd.pickNumber) {
		case turnClosed:
			return
		case turnOpen:
			t.broadcaster.BroadcastRoom(roomID, events.TimerTick{SecondsLeft: remaining})
		}
		if !t.wait(ctx, ticker) {
			return
		}
	}

	// Out of time. Expire once the room can be read, re-checking every tick.
	for {
		switch t.turnState(ctx, roomID, cd.pickNumber) {
		case turnClosed:
			return
		case turnOpen:
			// Release before expiring: the auto-pick starts the next countdown for this room.
			t.release(roomID, cd)

			log.Info().
				Str("room_id", roomID.String()).
				Int("pick_number", cd.pickNumber).
				Msg("countdown expired")
			t.onExpire(t.ctx, roomID, cd.pickNumber)
			return
		}
		if !t.wait(ctx, ticker) {
			return
		}
	}
}

func (t *PickTimer) wait(ctx context.Context, ticker clockwork.Ticker) bool {
	select {
	case <-ctx.Done():
		return false
	case <-ticker.Chan():
		return true
	}
}

type turn int

const (
	turnOpen turn = iota
	turnClosed
	// turnUnknown means the room could not be read; the countdown keeps
	// running and asks again on the next tick.
	turnUnknown
)

// turnState is the race guard: the countdown is only meaningful while the
// room is drafting and pickNumber is the next pick.
func (t *PickTimer) turnState(ctx context.Context, roomID uuid.UUID, pickNumber int) turn {
	if ctx.Err() != nil {
		return turnClosed
	}

	room, err := t.reader.GetRoom(ctx, roomID)
	if err != nil {
		if ctx.Err() != nil {
			return turnClosed
		}
		log.Warn().
			Err(err).
			Str("room_id", roomID.String()).
			Int("pick_number", pickNumber).
			Msg("countdown could not load room, retrying next tick")
		return turnUnknown
	}
	if room.Status != models.RoomStatusDrafting || room.CurrentPick != pickNumber-1 {
		log.Debug().
			Str("room_id", roomID.String()).
			Int("pick_number", pickNumber).
			Int("current_pick", room.CurrentPick).
			Msg("countdown superseded")
		return turnClosed
	}
	return turnOpen
}

// release forgets cd if it is still the room's active countdown.
func (t *PickTimer) release(roomID uuid.UUID, cd *countdown) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active[roomID] == cd {
		delete(t.active, roomID)
	}
	cd.cancel()
}
