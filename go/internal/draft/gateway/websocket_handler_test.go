package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	svc    *Service
	roomID uuid.UUID

	mu           sync.Mutex
	actions      []string
	disconnected int
}

func (s *stubSessions) CheckMembership(ctx context.Context, roomID uuid.UUID, userName string) error {
	if roomID != s.roomID {
		return errors.New("room not found")
	}
	if userName != "alice" {
		return errors.New("participant not found")
	}
	return nil
}

func (s *stubSessions) OnConnect(ctx context.Context, conn Conn) error {
	s.svc.Registry().Register(conn)
	return s.svc.Broadcaster().SendToConnection(conn, events.Sync{
		Room:             models.Room{ID: conn.RoomID(), Status: models.RoomStatusWaiting},
		Participants:     []models.Participant{},
		Picks:            []models.PickDetail{},
		AvailablePlayers: []models.Player{},
	})
}

func (s *stubSessions) OnAction(ctx context.Context, conn Conn, message []byte) {
	s.mu.Lock()
	s.actions = append(s.actions, string(message))
	s.mu.Unlock()
	s.svc.Broadcaster().SendToUser(conn.RoomID(), conn.UserName(), events.Error{Message: "unknown action"})
}

func (s *stubSessions) OnDisconnect(ctx context.Context, conn Conn) {
	if s.svc.Registry().Unregister(conn) {
		s.mu.Lock()
		s.disconnected++
		s.mu.Unlock()
	}
}

func (s *stubSessions) disconnects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnected
}

type stubState struct{}

func (stubState) Snapshot(ctx context.Context, roomID uuid.UUID) (events.Sync, error) {
	return events.Sync{Room: models.Room{ID: roomID}}, nil
}

func newGatewayServer(t *testing.T) (*httptest.Server, *stubSessions) {
	t.Helper()
	svc := NewService(DefaultConnectionConfig(), nil)
	sessions := &stubSessions{svc: svc, roomID: uuid.New()}

	mux := http.NewServeMux()
	svc.RegisterRoutes(context.Background(), mux, sessions, stubState{})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, sessions
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestWebSocketHandler_SessionLifecycle(t *testing.T) {
	srv, sessions := newGatewayServer(t)

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/"+sessions.roomID.String()+"/alice"), nil)
	require.NoError(t, err)

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"event":"sync"`)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"action":"trade"}`)))
	_, msg, err = ws.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"error","message":"unknown action"}`, string(msg))

	require.NoError(t, ws.Close())
	assert.Eventually(t, func() bool { return sessions.disconnects() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketHandler_RejectsUnknownParticipant(t *testing.T) {
	srv, sessions := newGatewayServer(t)

	tests := []struct {
		name   string
		path   string
		reason string
	}{
		{name: "bad room id", path: "/ws/not-a-uuid/alice", reason: "invalid room id"},
		{name: "unknown room", path: "/ws/" + uuid.NewString() + "/alice", reason: "room not found"},
		{name: "unknown user", path: "/ws/" + sessions.roomID.String() + "/mallory", reason: "participant not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, _, err := websocket.DefaultDialer.Dial(wsURL(srv, tt.path), nil)
			require.NoError(t, err)
			defer ws.Close()

			ws.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, _, err = ws.ReadMessage()
			var closeErr *websocket.CloseError
			require.ErrorAs(t, err, &closeErr)
			assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
			assert.Equal(t, tt.reason, closeErr.Text)
		})
	}
}

func TestStateHandler(t *testing.T) {
	srv, sessions := newGatewayServer(t)

	resp, err := http.Get(srv.URL + "/api/rooms/" + sessions.roomID.String() + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/rooms/nope/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
