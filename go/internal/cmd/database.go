package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mcdev12/draftroom/go/internal/config"
	"github.com/mcdev12/draftroom/go/internal/draft/repository"
	"github.com/rs/zerolog/log"
)

func setupDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	database, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("user", cfg.User).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to database")
	return database, nil
}

// setupStore returns the configured store. The *sql.DB is nil for the
// in-memory driver.
func setupStore(ctx context.Context, cfg config.Config) (repository.Store, *sql.DB, error) {
	if cfg.Store.Driver == config.StoreMemory {
		log.Warn().Msg("using in-memory store; drafts will not survive a restart")
		return repository.NewMemoryStore(), nil, nil
	}

	database, err := setupDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.EnsureSchema(ctx, database); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return repository.NewPostgresStore(database), database, nil
}
