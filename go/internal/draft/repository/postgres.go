package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/sqlutil"
)

const (
	roomColumns        = `id, name, code, status, current_pick, total_rounds, turn_time_sec, created_at`
	participantColumns = `id, room_id, user_name, draft_position, is_host, created_at`
	playerColumns      = `id, name, team, position, fantasy_pts, pass_yds, pass_td, rush_yds, rush_td,
		rec_yds, rec_td, fg_made, xp_made, sacks, ints, image_url, created_at`
	playerOrder = `fantasy_pts DESC, created_at, id`
)

type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresStore is the lib/pq backed Store.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateRoom(ctx context.Context, room models.Room, host models.Participant) error {
	err := sqlutil.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO draft_rooms (id, name, code, status, current_pick, total_rounds, turn_time_sec)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			room.ID, room.Name, room.Code, room.Status, room.CurrentPick, room.TotalRounds, room.TurnTimeSec,
		)
		if err != nil {
			if sqlutil.IsUniqueViolation(err) {
				return ErrRoomCodeTaken
			}
			return fmt.Errorf("failed to insert room: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO participants (id, room_id, user_name, draft_position, is_host)
			VALUES ($1, $2, $3, $4, $5)`,
			host.ID, room.ID, host.UserName, host.DraftPosition, host.IsHost,
		)
		if err != nil {
			return fmt.Errorf("failed to insert host: %w", err)
		}
		return nil
	})
	return err
}

func (s *PostgresStore) GetRoom(ctx context.Context, id uuid.UUID) (models.Room, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM draft_rooms WHERE id = $1`, id)
	room, err := scanRoom(row)
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

func (s *PostgresStore) GetRoomByCode(ctx context.Context, code string) (models.Room, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM draft_rooms WHERE code = $1`, code)
	room, err := scanRoom(row)
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to get room by code: %w", err)
	}
	return room, nil
}

func (s *PostgresStore) StartDraft(ctx context.Context, roomID uuid.UUID) (models.Room, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE draft_rooms SET status = 'drafting', current_pick = 0
		WHERE id = $1 AND status = 'waiting'
		RETURNING `+roomColumns, roomID)
	room, err := scanRoom(row)
	if errors.Is(err, ErrRoomNotFound) {
		// Distinguish a missing room from one that already left waiting.
		if _, getErr := s.GetRoom(ctx, roomID); getErr != nil {
			return models.Room{}, getErr
		}
		return models.Room{}, ErrRoomNotWaiting
	}
	if err != nil {
		return models.Room{}, fmt.Errorf("failed to start draft: %w", err)
	}
	return room, nil
}

func (s *PostgresStore) ListParticipants(ctx context.Context, roomID uuid.UUID) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+participantColumns+` FROM participants
		WHERE room_id = $1 ORDER BY draft_position`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	out := make([]models.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetParticipant(ctx context.Context, roomID uuid.UUID, userName string) (models.Participant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+participantColumns+` FROM participants
		WHERE room_id = $1 AND user_name = $2`, roomID, userName)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, ErrParticipantNotFound
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) AddParticipant(ctx context.Context, roomID uuid.UUID, userName string) (models.Participant, bool, error) {
	var (
		participant models.Participant
		created     bool
	)

	err := sqlutil.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		// Lock the room row so concurrent joins get consecutive positions.
		var status models.RoomStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM draft_rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock room: %w", err)
		}
		if status != models.RoomStatusWaiting {
			return ErrRoomNotWaiting
		}

		existing, err := scanParticipant(tx.QueryRowContext(ctx, `
			SELECT `+participantColumns+` FROM participants
			WHERE room_id = $1 AND user_name = $2`, roomID, userName))
		if err == nil {
			participant = existing
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to look up participant: %w", err)
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO participants (id, room_id, user_name, draft_position, is_host)
			SELECT $1, $2, $3, COALESCE(MAX(draft_position), 0) + 1, FALSE
			FROM participants WHERE room_id = $2
			RETURNING `+participantColumns, uuid.New(), roomID, userName)
		participant, err = scanParticipant(row)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return models.Participant{}, false, err
	}
	return participant, created, nil
}

func (s *PostgresStore) GetPlayer(ctx context.Context, id uuid.UUID) (models.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Player{}, ErrPlayerNotFound
	}
	if err != nil {
		return models.Player{}, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return s.queryPlayers(ctx, `SELECT `+playerColumns+` FROM players ORDER BY `+playerOrder)
}

func (s *PostgresStore) CountPlayers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) InsertPlayers(ctx context.Context, players []models.Player) error {
	return sqlutil.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO players (id, name, team, position, fantasy_pts, pass_yds, pass_td, rush_yds, rush_td,
				rec_yds, rec_td, fg_made, xp_made, sacks, ints, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, team = EXCLUDED.team, position = EXCLUDED.position,
				fantasy_pts = EXCLUDED.fantasy_pts`)
		if err != nil {
			return fmt.Errorf("failed to prepare player insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range players {
			if p.ID == uuid.Nil {
				p.ID = uuid.New()
			}
			_, err := stmt.ExecContext(ctx,
				p.ID, p.Name, p.Team, p.Position, p.FantasyPts,
				sqlutil.NullInt(p.PassYds), sqlutil.NullInt(p.PassTD),
				sqlutil.NullInt(p.RushYds), sqlutil.NullInt(p.RushTD),
				sqlutil.NullInt(p.RecYds), sqlutil.NullInt(p.RecTD),
				sqlutil.NullInt(p.FGMade), sqlutil.NullInt(p.XPMade),
				sqlutil.NullInt(p.Sacks), sqlutil.NullInt(p.Ints),
				sqlutil.NullText(p.ImageURL),
			)
			if err != nil {
				return fmt.Errorf("failed to insert player %s: %w", p.Name, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) IsPlayerDrafted(ctx context.Context, roomID, playerID uuid.UUID) (bool, error) {
	var drafted bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM picks WHERE room_id = $1 AND player_id = $2)`,
		roomID, playerID).Scan(&drafted)
	if err != nil {
		return false, fmt.Errorf("failed to check drafted player: %w", err)
	}
	return drafted, nil
}

func (s *PostgresStore) ListAvailablePlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	return s.queryPlayers(ctx, `
		SELECT `+playerColumns+` FROM players
		WHERE id NOT IN (SELECT player_id FROM picks WHERE room_id = $1)
		ORDER BY `+playerOrder, roomID)
}

func (s *PostgresStore) ListPicks(ctx context.Context, roomID uuid.UUID) ([]models.PickDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pk.pick_number, pk.picked_at, pa.user_name,
			pl.id, pl.name, pl.team, pl.position, pl.fantasy_pts, pl.pass_yds, pl.pass_td, pl.rush_yds,
			pl.rush_td, pl.rec_yds, pl.rec_td, pl.fg_made, pl.xp_made, pl.sacks, pl.ints, pl.image_url,
			pl.created_at
		FROM picks pk
		JOIN participants pa ON pa.id = pk.participant_id
		JOIN players pl ON pl.id = pk.player_id
		WHERE pk.room_id = $1
		ORDER BY pk.pick_number`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	defer rows.Close()

	out := make([]models.PickDetail, 0)
	for rows.Next() {
		var (
			d     models.PickDetail
			stats playerNulls
		)
		err := rows.Scan(
			&d.PickNumber, &d.PickedAt, &d.UserName,
			&d.Player.ID, &d.Player.Name, &d.Player.Team, &d.Player.Position, &d.Player.FantasyPts,
			&stats.passYds, &stats.passTD, &stats.rushYds, &stats.rushTD, &stats.recYds, &stats.recTD,
			&stats.fgMade, &stats.xpMade, &stats.sacks, &stats.ints, &stats.imageURL,
			&d.Player.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		stats.apply(&d.Player)
		out = append(out, d)
	}
	return out, rows.Err()
}

// CommitPick advances the room and records the pick in one transaction. The
// room update is conditional on current_pick still being PickNumber-1, so a
// writer that validated against an older turn gets ErrStaleTurn.
func (s *PostgresStore) CommitPick(ctx context.Context, req CommitPickRequest) (models.Room, error) {
	p := req.Pick
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PickedAt.IsZero() {
		p.PickedAt = time.Now().UTC()
	}

	var room models.Room
	err := sqlutil.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		status := models.RoomStatusDrafting
		if req.Complete {
			status = models.RoomStatusCompleted
		}

		row := tx.QueryRowContext(ctx, `
			UPDATE draft_rooms SET current_pick = $2, status = $3
			WHERE id = $1 AND current_pick = $4 AND status = 'drafting'
			RETURNING `+roomColumns,
			p.RoomID, p.PickNumber, status, p.PickNumber-1)
		var err error
		room, err = scanRoom(row)
		if errors.Is(err, ErrRoomNotFound) {
			return ErrStaleTurn
		}
		if err != nil {
			return fmt.Errorf("failed to advance room: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO picks (id, room_id, participant_id, player_id, pick_number, picked_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.RoomID, p.ParticipantID, p.PlayerID, p.PickNumber, p.PickedAt,
		)
		if err != nil {
			if sqlutil.IsUniqueViolation(err) {
				return ErrPickConflict
			}
			return fmt.Errorf("failed to insert pick: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Room{}, err
	}
	return room, nil
}

func (s *PostgresStore) queryPlayers(ctx context.Context, query string, args ...any) ([]models.Player, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	out := make([]models.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanRoom(row rowScanner) (models.Room, error) {
	var r models.Room
	err := row.Scan(&r.ID, &r.Name, &r.Code, &r.Status, &r.CurrentPick, &r.TotalRounds, &r.TurnTimeSec, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return r, err
}

func scanParticipant(row rowScanner) (models.Participant, error) {
	var p models.Participant
	err := row.Scan(&p.ID, &p.RoomID, &p.UserName, &p.DraftPosition, &p.IsHost, &p.CreatedAt)
	return p, err
}

// playerNulls holds the nullable player columns during a scan.
type playerNulls struct {
	passYds, passTD, rushYds, rushTD, recYds, recTD sql.NullInt32
	fgMade, xpMade, sacks, ints                     sql.NullInt32
	imageURL                                        sql.NullString
}

func (n playerNulls) apply(p *models.Player) {
	p.PassYds = sqlutil.IntOrNil(n.passYds)
	p.PassTD = sqlutil.IntOrNil(n.passTD)
	p.RushYds = sqlutil.IntOrNil(n.rushYds)
	p.RushTD = sqlutil.IntOrNil(n.rushTD)
	p.RecYds = sqlutil.IntOrNil(n.recYds)
	p.RecTD = sqlutil.IntOrNil(n.recTD)
	p.FGMade = sqlutil.IntOrNil(n.fgMade)
	p.XPMade = sqlutil.IntOrNil(n.xpMade)
	p.Sacks = sqlutil.IntOrNil(n.sacks)
	p.Ints = sqlutil.IntOrNil(n.ints)
	p.ImageURL = sqlutil.TextOrNil(n.imageURL)
}

func scanPlayer(row rowScanner) (models.Player, error) {
	var (
		p     models.Player
		stats playerNulls
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Team, &p.Position, &p.FantasyPts,
		&stats.passYds, &stats.passTD, &stats.rushYds, &stats.rushTD, &stats.recYds, &stats.recTD,
		&stats.fgMade, &stats.xpMade, &stats.sacks, &stats.ints, &stats.imageURL,
		&p.CreatedAt,
	)
	if err != nil {
		return models.Player{}, err
	}
	stats.apply(&p)
	return p, nil
}
