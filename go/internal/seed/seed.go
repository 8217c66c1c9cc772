package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/assets"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyPool     = errors.New("player pool is empty")
	ErrInvalidPlayer = errors.New("invalid player")
)

var positions = map[string]bool{
	"QB": true, "RB": true, "WR": true, "TE": true, "K": true, "DEF": true,
}

// playerNamespace keys the deterministic player IDs so reseeding the same
// pool is idempotent.
var playerNamespace = uuid.MustParse("3b0f6f0e-55a4-4c4e-8f0a-2d3f3c1b7a91")

type poolFile struct {
	Players []models.Player `yaml:"players"`
}

// Parse decodes a YAML pool, validates every entry and assigns IDs to players
// that do not carry one.
func Parse(data []byte) ([]models.Player, error) {
	var pool poolFile
	if err := yaml.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("failed to parse player pool: %w", err)
	}
	if len(pool.Players) == 0 {
		return nil, ErrEmptyPool
	}

	seen := make(map[uuid.UUID]string, len(pool.Players))
	for i := range pool.Players {
		p := &pool.Players[i]
		p.Name = strings.TrimSpace(p.Name)
		p.Position = strings.ToUpper(strings.TrimSpace(p.Position))

		switch {
		case p.Name == "":
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidPlayer, i)
		case !positions[p.Position]:
			return nil, fmt.Errorf("%w: %s has unknown position %q", ErrInvalidPlayer, p.Name, p.Position)
		case p.FantasyPts < 0:
			return nil, fmt.Errorf("%w: %s has negative fantasy_pts", ErrInvalidPlayer, p.Name)
		}

		if p.ID == uuid.Nil {
			p.ID = PlayerID(p.Name, p.Team, p.Position)
		}
		if other, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("%w: %s duplicates %s", ErrInvalidPlayer, p.Name, other)
		}
		seen[p.ID] = p.Name
	}
	return pool.Players, nil
}

// Load reads the pool at path, or the built-in pool when path is empty.
func Load(path string) ([]models.Player, error) {
	if path == "" {
		return Parse(assets.PlayersYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read player pool: %w", err)
	}
	return Parse(data)
}

// PlayerID derives a stable ID from a player's identity.
func PlayerID(name, team, position string) uuid.UUID {
	return uuid.NewSHA1(playerNamespace, []byte(name+"|"+team+"|"+position))
}

type PlayerStore interface {
	CountPlayers(ctx context.Context) (int, error)
	InsertPlayers(ctx context.Context, players []models.Player) error
}

// EnsurePlayers inserts the pool only when the store holds no players and
// reports how many rows were written.
func EnsurePlayers(ctx context.Context, store PlayerStore, players []models.Player) (int, error) {
	count, err := store.CountPlayers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	if count > 0 {
		log.Debug().Int("players", count).Msg("player pool already seeded")
		return 0, nil
	}

	if err := store.InsertPlayers(ctx, players); err != nil {
		return 0, fmt.Errorf("failed to seed players: %w", err)
	}
	log.Info().Int("players", len(players)).Msg("seeded player pool")
	return len(players), nil
}
