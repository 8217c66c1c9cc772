package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/pick"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// MemoryStore is a process-local Store used for development and tests. It
// honours the same conflict rules as PostgresStore.
type MemoryStore struct {
	mu           sync.RWMutex
	rooms        map[uuid.UUID]models.Room
	participants map[uuid.UUID][]models.Participant
	players      []models.Player
	playerIndex  map[uuid.UUID]int
	picks        map[uuid.UUID][]models.Pick
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:        make(map[uuid.UUID]models.Room),
		participants: make(map[uuid.UUID][]models.Participant),
		playerIndex:  make(map[uuid.UUID]int),
		picks:        make(map[uuid.UUID][]models.Pick),
		now:          time.Now,
	}
}

func (m *MemoryStore) CreateRoom(ctx context.Context, room models.Room, host models.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rooms {
		if r.Code == room.Code {
			return ErrRoomCodeTaken
		}
	}

	if room.CreatedAt.IsZero() {
		room.CreatedAt = m.now()
	}
	if host.CreatedAt.IsZero() {
		host.CreatedAt = room.CreatedAt
	}
	host.RoomID = room.ID

	m.rooms[room.ID] = room
	m.participants[room.ID] = []models.Participant{host}
	return nil
}

func (m *MemoryStore) GetRoom(ctx context.Context, id uuid.UUID) (models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[id]
	if !ok {
		return models.Room{}, ErrRoomNotFound
	}
	return room, nil
}

func (m *MemoryStore) GetRoomByCode(ctx context.Context, code string) (models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.rooms {
		if r.Code == code {
			return r, nil
		}
	}
	return models.Room{}, ErrRoomNotFound
}

func (m *MemoryStore) StartDraft(ctx context.Context, roomID uuid.UUID) (models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return models.Room{}, ErrRoomNotFound
	}
	if room.Status != models.RoomStatusWaiting {
		return models.Room{}, ErrRoomNotWaiting
	}

	room.Status = models.RoomStatusDrafting
	room.CurrentPick = 0
	m.rooms[roomID] = room
	return room, nil
}

func (m *MemoryStore) ListParticipants(ctx context.Context, roomID uuid.UUID) ([]models.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// participants are appended in position order
	out := make([]models.Participant, len(m.participants[roomID]))
	copy(out, m.participants[roomID])
	return out, nil
}

func (m *MemoryStore) GetParticipant(ctx context.Context, roomID uuid.UUID, userName string) (models.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.participants[roomID] {
		if p.UserName == userName {
			return p, nil
		}
	}
	return models.Participant{}, ErrParticipantNotFound
}

func (m *MemoryStore) AddParticipant(ctx context.Context, roomID uuid.UUID, userName string) (models.Participant, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return models.Participant{}, false, ErrRoomNotFound
	}
	if room.Status != models.RoomStatusWaiting {
		return models.Participant{}, false, ErrRoomNotWaiting
	}

	for _, p := range m.participants[roomID] {
		if p.UserName == userName {
			return p, false, nil
		}
	}

	p := models.Participant{
		ID:            uuid.New(),
		RoomID:        roomID,
		UserName:      userName,
		DraftPosition: len(m.participants[roomID]) + 1,
		CreatedAt:     m.now(),
	}
	m.participants[roomID] = append(m.participants[roomID], p)
	return p, true, nil
}

func (m *MemoryStore) GetPlayer(ctx context.Context, id uuid.UUID) (models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.playerIndex[id]
	if !ok {
		return models.Player{}, ErrPlayerNotFound
	}
	return m.players[i], nil
}

func (m *MemoryStore) ListPlayers(ctx context.Context) ([]models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Player, len(m.players))
	copy(out, m.players)
	pick.SortByScore(out)
	return out, nil
}

func (m *MemoryStore) CountPlayers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players), nil
}

func (m *MemoryStore) InsertPlayers(ctx context.Context, players []models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range players {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = m.now()
		}
		if i, ok := m.playerIndex[p.ID]; ok {
			m.players[i] = p
			continue
		}
		m.playerIndex[p.ID] = len(m.players)
		m.players = append(m.players, p)
	}
	return nil
}

func (m *MemoryStore) IsPlayerDrafted(ctx context.Context, roomID, playerID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isDraftedLocked(roomID, playerID), nil
}

func (m *MemoryStore) isDraftedLocked(roomID, playerID uuid.UUID) bool {
	for _, p := range m.picks[roomID] {
		if p.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (m *MemoryStore) ListAvailablePlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	drafted := make(map[uuid.UUID]struct{}, len(m.picks[roomID]))
	for _, p := range m.picks[roomID] {
		drafted[p.PlayerID] = struct{}{}
	}

	out := make([]models.Player, 0, len(m.players)-len(drafted))
	for _, p := range m.players {
		if _, ok := drafted[p.ID]; !ok {
			out = append(out, p)
		}
	}
	pick.SortByScore(out)
	return out, nil
}

func (m *MemoryStore) ListPicks(ctx context.Context, roomID uuid.UUID) ([]models.PickDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make(map[uuid.UUID]string, len(m.participants[roomID]))
	for _, p := range m.participants[roomID] {
		names[p.ID] = p.UserName
	}

	out := make([]models.PickDetail, 0, len(m.picks[roomID]))
	for _, p := range m.picks[roomID] {
		out = append(out, models.PickDetail{
			PickNumber: p.PickNumber,
			UserName:   names[p.ParticipantID],
			Player:     m.players[m.playerIndex[p.PlayerID]],
			PickedAt:   p.PickedAt,
		})
	}
	return out, nil
}

func (m *MemoryStore) CommitPick(ctx context.Context, req CommitPickRequest) (models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := req.Pick
	room, ok := m.rooms[p.RoomID]
	if !ok {
		return models.Room{}, ErrRoomNotFound
	}
	if room.Status != models.RoomStatusDrafting || room.CurrentPick != p.PickNumber-1 {
		return models.Room{}, ErrStaleTurn
	}
	if _, ok := m.playerIndex[p.PlayerID]; !ok {
		return models.Room{}, ErrPlayerNotFound
	}
	if m.isDraftedLocked(p.RoomID, p.PlayerID) {
		return models.Room{}, ErrPickConflict
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PickedAt.IsZero() {
		p.PickedAt = m.now()
	}
	m.picks[p.RoomID] = append(m.picks[p.RoomID], p)

	room.CurrentPick = p.PickNumber
	if req.Complete {
		room.Status = models.RoomStatusCompleted
	}
	m.rooms[room.ID] = room
	return room, nil
}
