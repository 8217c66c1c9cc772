package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/gateway"
	"github.com/mcdev12/draftroom/go/internal/draft/repository"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/require"
)

type sent struct {
	scope string // room, user or conn
	room  uuid.UUID
	user  string
	event events.Event
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingBroadcaster) BroadcastRoom(roomID uuid.UUID, e events.Event) {
	r.record(sent{scope: "room", room: roomID, event: e})
}

func (r *recordingBroadcaster) SendToUser(roomID uuid.UUID, user string, e events.Event) {
	r.record(sent{scope: "user", room: roomID, user: user, event: e})
}

func (r *recordingBroadcaster) SendToConnection(c gateway.Conn, e events.Event) error {
	r.record(sent{scope: "conn", room: c.RoomID(), user: c.UserName(), event: e})
	return nil
}

func (r *recordingBroadcaster) record(s sent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, s)
}

// roomEvents returns room broadcasts with the given event name.
func (r *recordingBroadcaster) roomEvents(name string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, s := range r.sent {
		if s.scope == "room" && s.event.Name() == name {
			out = append(out, s.event)
		}
	}
	return out
}

// userErrors returns the error messages sent to user.
func (r *recordingBroadcaster) userErrors(user string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, s := range r.sent {
		if e, ok := s.event.(events.Error); ok {
			if s.scope == "user" && s.user == user {
				out = append(out, e.Message)
			}
		}
	}
	return out
}

func (r *recordingBroadcaster) count(scope, name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.scope == scope && s.event.Name() == name {
			n++
		}
	}
	return n
}

// hasTick reports whether a timer_tick with secondsLeft has been broadcast.
func (r *recordingBroadcaster) hasTick(secondsLeft int) bool {
	for _, e := range r.roomEvents(events.NameTimerTick) {
		if e.(events.TimerTick).SecondsLeft == secondsLeft {
			return true
		}
	}
	return false
}

func (r *recordingBroadcaster) tickCount() int {
	return len(r.roomEvents(events.NameTimerTick))
}

type recordingNotifier struct {
	mu    sync.Mutex
	rooms []uuid.UUID
	err   error
}

func (n *recordingNotifier) NotifyDraftComplete(ctx context.Context, roomID uuid.UUID, at time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rooms = append(n.rooms, roomID)
	return n.err
}

func (n *recordingNotifier) calls() []uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]uuid.UUID(nil), n.rooms...)
}

type stubConn struct {
	id     string
	roomID uuid.UUID
	user   string
}

func newStubConn(roomID uuid.UUID, user string) *stubConn {
	return &stubConn{id: uuid.NewString(), roomID: roomID, user: user}
}

func (s *stubConn) ID() string             { return s.id }
func (s *stubConn) RoomID() uuid.UUID      { return s.roomID }
func (s *stubConn) UserName() string       { return s.user }
func (s *stubConn) Send(data []byte) error { return nil }
func (s *stubConn) Close() error           { return nil }

// recordingConn keeps every frame it is sent, or fails every send once
// failing is set.
type recordingConn struct {
	stubConn
	failing atomic.Bool

	mu     sync.Mutex
	frames []string
}

func newRecordingConn(roomID uuid.UUID, user string) *recordingConn {
	return &recordingConn{stubConn: *newStubConn(roomID, user)}
}

func (r *recordingConn) Send(data []byte) error {
	if r.failing.Load() {
		return errors.New("connection reset")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, string(data))
	return nil
}

// count returns how many received frames carry the named event.
func (r *recordingConn) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.frames {
		if strings.HasPrefix(f, `{"event":"`+name+`"`) {
			n++
		}
	}
	return n
}

// pausingStore holds the first GetRoom after arm until release is closed.
type pausingStore struct {
	*repository.MemoryStore
	armed   atomic.Bool
	paused  chan struct{}
	release chan struct{}
}

func newPausingStore(store *repository.MemoryStore) *pausingStore {
	return &pausingStore{
		MemoryStore: store,
		paused:      make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (p *pausingStore) arm() { p.armed.Store(true) }

func (p *pausingStore) GetRoom(ctx context.Context, id uuid.UUID) (models.Room, error) {
	room, err := p.MemoryStore.GetRoom(ctx, id)
	if p.armed.CompareAndSwap(true, false) {
		close(p.paused)
		<-p.release
	}
	return room, err
}

// faultyStore fails every CommitPick.
type faultyStore struct {
	repository.Store
}

var errDiskFull = errors.New("disk full")

func (f faultyStore) CommitPick(ctx context.Context, req repository.CommitPickRequest) (models.Room, error) {
	return models.Room{}, errDiskFull
}

type fixture struct {
	store       *repository.MemoryStore
	broadcaster *recordingBroadcaster
	notifier    *recordingNotifier
	registry    *gateway.Registry
	clock       *clockwork.FakeClock
	coord       *Coordinator
	room        models.Room
	users       []string
	players     []models.Player
}

// newFixture builds a waiting room with the given users (first is host) and a
// player pool whose fantasy points are pts, in insertion order.
func newFixture(t *testing.T, rounds, turnSec int, users []string, pts ...float64) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:       repository.NewMemoryStore(),
		broadcaster: &recordingBroadcaster{},
		notifier:    &recordingNotifier{},
		registry:    gateway.NewRegistry(nil),
		clock:       clockwork.NewFakeClock(),
		users:       users,
	}
	f.room = models.Room{
		ID:          uuid.New(),
		Name:        "test room",
		Code:        "TEST",
		Status:      models.RoomStatusWaiting,
		TotalRounds: rounds,
		TurnTimeSec: turnSec,
	}
	host := models.Participant{ID: uuid.New(), UserName: users[0], DraftPosition: 1, IsHost: true}
	require.NoError(t, f.store.CreateRoom(ctx, f.room, host))
	for _, u := range users[1:] {
		_, _, err := f.store.AddParticipant(ctx, f.room.ID, u)
		require.NoError(t, err)
	}

	for i, p := range pts {
		f.players = append(f.players, models.Player{
			ID:         uuid.New(),
			Name:       "player " + string(rune('A'+i)),
			Team:       "KC",
			Position:   "RB",
			FantasyPts: p,
		})
	}
	require.NoError(t, f.store.InsertPlayers(ctx, f.players))

	f.coord = f.newCoordinator(f.store)
	t.Cleanup(f.coord.Close)
	return f
}

func (f *fixture) newCoordinator(store repository.Store) *Coordinator {
	return NewCoordinator(store, f.registry, f.broadcaster, f.notifier, f.clock, nil, DefaultConfig())
}

func (f *fixture) currentPick(t *testing.T) int {
	t.Helper()
	room, err := f.store.GetRoom(context.Background(), f.room.ID)
	require.NoError(t, err)
	return room.CurrentPick
}

func (f *fixture) status(t *testing.T) models.RoomStatus {
	t.Helper()
	room, err := f.store.GetRoom(context.Background(), f.room.ID)
	require.NoError(t, err)
	return room.Status
}

func (f *fixture) picks(t *testing.T) []models.PickDetail {
	t.Helper()
	picks, err := f.store.ListPicks(context.Background(), f.room.ID)
	require.NoError(t, err)
	return picks
}
