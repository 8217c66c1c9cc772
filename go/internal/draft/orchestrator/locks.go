package orchestrator

import (
	"sync"

	"github.com/google/uuid"
)

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// roomLocks hands out one mutex per room. Entries are dropped once nobody
// holds or waits for them, so idle rooms cost nothing.
type roomLocks struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*roomLock
}

func newRoomLocks() *roomLocks {
	return &roomLocks{rooms: make(map[uuid.UUID]*roomLock)}
}

// lock blocks until the caller holds roomID's mutex and returns its release func.
func (l *roomLocks) lock(roomID uuid.UUID) func() {
	l.mu.Lock()
	rl, ok := l.rooms[roomID]
	if !ok {
		rl = &roomLock{}
		l.rooms[roomID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()

		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.rooms, roomID)
		}
		l.mu.Unlock()
	}
}

func (l *roomLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}
