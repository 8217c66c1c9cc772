package rooms

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/repository"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

var ErrInvalidRequest = errors.New("invalid request")

const (
	codeLength      = 4
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxCodeAttempts = 16
	maxNameLength   = 64
)

// RoomsRepository defines what the app layer needs from the repository
type RoomsRepository interface {
	CreateRoom(ctx context.Context, room models.Room, host models.Participant) error
	GetRoom(ctx context.Context, id uuid.UUID) (models.Room, error)
	GetRoomByCode(ctx context.Context, code string) (models.Room, error)
	ListParticipants(ctx context.Context, roomID uuid.UUID) ([]models.Participant, error)
	AddParticipant(ctx context.Context, roomID uuid.UUID, userName string) (models.Participant, bool, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ListAvailablePlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error)
	ListPicks(ctx context.Context, roomID uuid.UUID) ([]models.PickDetail, error)
}

// DraftStarter moves a room into drafting and kicks off its first turn.
type DraftStarter interface {
	StartDraft(ctx context.Context, roomID uuid.UUID) (models.Room, error)
}

type Broadcaster interface {
	BroadcastRoom(roomID uuid.UUID, e events.Event)
}

type Defaults struct {
	TurnTimeSec int
	TotalRounds int
}

// App handles room lifecycle outside the turn engine: creation, joining and
// read-only views.
type App struct {
	repo        RoomsRepository
	starter     DraftStarter
	broadcaster Broadcaster
	defaults    Defaults
	newCode     func() string
}

func NewApp(repo RoomsRepository, starter DraftStarter, broadcaster Broadcaster, defaults Defaults) *App {
	return &App{
		repo:        repo,
		starter:     starter,
		broadcaster: broadcaster,
		defaults:    defaults,
		newCode:     randomCode,
	}
}

// CreateRoom creates a waiting room with a fresh join code and seats the host
// at draft position 1.
func (a *App) CreateRoom(ctx context.Context, req CreateRoomRequest) (models.Room, error) {
	if req.TurnTimeSec == 0 {
		req.TurnTimeSec = a.defaults.TurnTimeSec
	}
	if req.TotalRounds == 0 {
		req.TotalRounds = a.defaults.TotalRounds
	}
	if err := validateCreateRoomRequest(&req); err != nil {
		return models.Room{}, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		room := models.Room{
			ID:          uuid.New(),
			Name:        req.Name,
			Code:        a.newCode(),
			Status:      models.RoomStatusWaiting,
			TotalRounds: req.TotalRounds,
			TurnTimeSec: req.TurnTimeSec,
		}
		host := models.Participant{
			ID:            uuid.New(),
			RoomID:        room.ID,
			UserName:      req.HostName,
			DraftPosition: 1,
			IsHost:        true,
		}

		err := a.repo.CreateRoom(ctx, room, host)
		if errors.Is(err, repository.ErrRoomCodeTaken) {
			log.Debug().Str("code", room.Code).Msg("room code collision, retrying")
			continue
		}
		if err != nil {
			return models.Room{}, fmt.Errorf("failed to create room: %w", err)
		}

		log.Info().
			Str("room_id", room.ID.String()).
			Str("code", room.Code).
			Str("host", host.UserName).
			Int("total_rounds", room.TotalRounds).
			Int("turn_time_sec", room.TurnTimeSec).
			Msg("room created")
		return room, nil
	}
	return models.Room{}, fmt.Errorf("failed to create room: %w after %d attempts", repository.ErrRoomCodeTaken, maxCodeAttempts)
}

func (a *App) GetRoom(ctx context.Context, roomID uuid.UUID) (RoomDetails, error) {
	room, err := a.repo.GetRoom(ctx, roomID)
	if err != nil {
		return RoomDetails{}, err
	}
	participants, err := a.repo.ListParticipants(ctx, roomID)
	if err != nil {
		return RoomDetails{}, fmt.Errorf("failed to list participants: %w", err)
	}
	return RoomDetails{Room: room, Participants: participants}, nil
}

func (a *App) GetRoomByCode(ctx context.Context, code string) (models.Room, error) {
	return a.repo.GetRoomByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// JoinRoom seats userName at the next draft position. Joining again with a
// name already in the room is a reconnection and returns the existing seat.
// Both cases announce the current roster to the room.
func (a *App) JoinRoom(ctx context.Context, roomID uuid.UUID, req JoinRoomRequest) (models.Participant, error) {
	userName := strings.TrimSpace(req.UserName)
	if err := validateUserName(userName); err != nil {
		return models.Participant{}, err
	}

	p, created, err := a.repo.AddParticipant(ctx, roomID, userName)
	if err != nil {
		return models.Participant{}, err
	}

	participants, err := a.repo.ListParticipants(ctx, roomID)
	if err != nil {
		return models.Participant{}, fmt.Errorf("failed to list participants: %w", err)
	}
	a.broadcaster.BroadcastRoom(roomID, events.UserJoined{User: userName, Participants: participants})

	log.Info().
		Str("room_id", roomID.String()).
		Str("user_name", userName).
		Int("draft_position", p.DraftPosition).
		Bool("rejoin", !created).
		Msg("participant joined")
	return p, nil
}

func (a *App) StartDraft(ctx context.Context, roomID uuid.UUID) (models.Room, error) {
	return a.starter.StartDraft(ctx, roomID)
}

func (a *App) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return a.repo.ListPlayers(ctx)
}

func (a *App) ListAvailablePlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	if _, err := a.repo.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return a.repo.ListAvailablePlayers(ctx, roomID)
}

func (a *App) ListPicks(ctx context.Context, roomID uuid.UUID) ([]models.PickDetail, error) {
	if _, err := a.repo.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return a.repo.ListPicks(ctx, roomID)
}

func (a *App) Teams(ctx context.Context, roomID uuid.UUID) (models.Teams, error) {
	picks, err := a.ListPicks(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return models.TeamsFromPicks(picks), nil
}

func validateCreateRoomRequest(req *CreateRoomRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.HostName = strings.TrimSpace(req.HostName)

	if req.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if len(req.Name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidRequest, maxNameLength)
	}
	if err := validateUserName(req.HostName); err != nil {
		return err
	}
	if req.TurnTimeSec <= 0 {
		return fmt.Errorf("%w: turn_time_sec must be positive", ErrInvalidRequest)
	}
	if req.TotalRounds <= 0 {
		return fmt.Errorf("%w: total_rounds must be positive", ErrInvalidRequest)
	}
	return nil
}

func validateUserName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: user name is required", ErrInvalidRequest)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: user name must be at most %d characters", ErrInvalidRequest, maxNameLength)
	}
	return nil
}

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}
