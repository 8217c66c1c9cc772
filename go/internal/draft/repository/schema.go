package repository

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS draft_rooms (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    code          CHAR(4) NOT NULL UNIQUE,
    status        TEXT NOT NULL DEFAULT 'waiting'
                  CHECK (status IN ('waiting', 'drafting', 'completed')),
    current_pick  INTEGER NOT NULL DEFAULT 0,
    total_rounds  INTEGER NOT NULL,
    turn_time_sec INTEGER NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS participants (
    id             UUID PRIMARY KEY,
    room_id        UUID NOT NULL REFERENCES draft_rooms(id) ON DELETE CASCADE,
    user_name      TEXT NOT NULL,
    draft_position INTEGER NOT NULL,
    is_host        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (room_id, user_name),
    UNIQUE (room_id, draft_position)
);

CREATE TABLE IF NOT EXISTS players (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL,
    team        TEXT NOT NULL,
    position    TEXT NOT NULL,
    fantasy_pts DOUBLE PRECISION NOT NULL DEFAULT 0,
    pass_yds    INTEGER,
    pass_td     INTEGER,
    rush_yds    INTEGER,
    rush_td     INTEGER,
    rec_yds     INTEGER,
    rec_td      INTEGER,
    fg_made     INTEGER,
    xp_made     INTEGER,
    sacks       INTEGER,
    ints        INTEGER,
    image_url   TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS picks (
    id             UUID PRIMARY KEY,
    room_id        UUID NOT NULL REFERENCES draft_rooms(id) ON DELETE CASCADE,
    participant_id UUID NOT NULL REFERENCES participants(id),
    player_id      UUID NOT NULL REFERENCES players(id),
    pick_number    INTEGER NOT NULL,
    picked_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (room_id, pick_number),
    UNIQUE (room_id, player_id)
);

CREATE INDEX IF NOT EXISTS idx_players_fantasy_pts ON players (fantasy_pts DESC);
`

// EnsureSchema creates the draft tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
