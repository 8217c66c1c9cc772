package gateway

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

type fakeConn struct {
	id     string
	roomID uuid.UUID
	user   string

	mu      sync.Mutex
	sent    [][]byte
	failing bool
	closed  bool
}

func newFakeConn(roomID uuid.UUID, user string) *fakeConn {
	return &fakeConn{id: uuid.NewString(), roomID: roomID, user: user}
}

func (f *fakeConn) ID() string        { return f.id }
func (f *fakeConn) RoomID() uuid.UUID { return f.roomID }
func (f *fakeConn) UserName() string  { return f.user }

func (f *fakeConn) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing || f.closed {
		return errors.New("broken pipe")
	}
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = string(m)
	}
	return out
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
