package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is immutable reference data from the player pool.
type Player struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Team       string    `json:"team" yaml:"team"`
	Position   string    `json:"position" yaml:"position"` // QB, RB, WR, TE, K, DEF
	FantasyPts float64   `json:"fantasy_pts" yaml:"fantasy_pts"`

	// Position-specific stats, nil when they do not apply
	PassYds  *int    `json:"pass_yds" yaml:"pass_yds,omitempty"`
	PassTD   *int    `json:"pass_td" yaml:"pass_td,omitempty"`
	RushYds  *int    `json:"rush_yds" yaml:"rush_yds,omitempty"`
	RushTD   *int    `json:"rush_td" yaml:"rush_td,omitempty"`
	RecYds   *int    `json:"rec_yds" yaml:"rec_yds,omitempty"`
	RecTD    *int    `json:"rec_td" yaml:"rec_td,omitempty"`
	FGMade   *int    `json:"fg_made" yaml:"fg_made,omitempty"`
	XPMade   *int    `json:"xp_made" yaml:"xp_made,omitempty"`
	Sacks    *int    `json:"sacks" yaml:"sacks,omitempty"`
	Ints     *int    `json:"ints" yaml:"ints,omitempty"`
	ImageURL *string `json:"image_url" yaml:"image_url,omitempty"`

	CreatedAt time.Time `json:"-" yaml:"-"`
}
