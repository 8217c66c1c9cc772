package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mcdev12/draftroom/go/internal/config"
	"github.com/mcdev12/draftroom/go/internal/seed"
)

func main() {
	poolFile := flag.String("file", "", "YAML player pool (defaults to the built-in pool)")
	flag.Parse()

	_ = godotenv.Load()
	ctx := context.Background()

	// 1) Load the pool
	players, err := seed.Load(*poolFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load pool: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect to DB
	cfg := config.Load()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Seed players
	total, inserted, skipped, errs := len(players), 0, 0, 0
	for _, p := range players {
		tag, err := pool.Exec(ctx, `
            INSERT INTO players (
              id, name, team, position, fantasy_pts,
              pass_yds, pass_td, rush_yds, rush_td, rec_yds, rec_td,
              fg_made, xp_made, sacks, ints, image_url
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
            ON CONFLICT (id) DO NOTHING
        `,
			p.ID, p.Name, p.Team, p.Position, p.FantasyPts,
			p.PassYds, p.PassTD, p.RushYds, p.RushTD, p.RecYds, p.RecTD,
			p.FGMade, p.XPMade, p.Sacks, p.Ints, p.ImageURL,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "insert %s: %v\n", p.Name, err)
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}
	fmt.Printf(
		"Players seed: total=%d inserted=%d skipped=%d errors=%d\n",
		total, inserted, skipped, errs,
	)
	if errs > 0 {
		os.Exit(1)
	}
}
