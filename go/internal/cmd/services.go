package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/draftroom/go/internal/config"
	"github.com/mcdev12/draftroom/go/internal/draft/gateway"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/draft/outbox"
	"github.com/mcdev12/draftroom/go/internal/draft/repository"
	"github.com/mcdev12/draftroom/go/internal/metrics"
	"github.com/mcdev12/draftroom/go/internal/rooms"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Metrics     *metrics.Collector
	Gateway     *gateway.Service
	Coordinator *orchestrator.Coordinator
	Rooms       *rooms.Handler
	Health      *outbox.HealthChecker

	jetstream *outbox.JetStreamNotifier
}

func setupServices(ctx context.Context, cfg config.Config, store repository.Store, database *sql.DB) (*Services, error) {
	// Wire up dependency injection chain
	// Store → Coordinator → Gateway / Rooms

	m := metrics.New()
	gw := gateway.NewService(gateway.DefaultConnectionConfig(), m)

	var (
		notifier outbox.Notifier = outbox.LogNotifier{}
		js       *outbox.JetStreamNotifier
		natsConn outbox.ConnState
	)
	if cfg.NATS.Enabled {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		jsCfg.StreamName = cfg.NATS.Stream
		jsCfg.Subject = cfg.NATS.Subject

		var err error
		js, err = outbox.NewJetStreamNotifier(ctx, jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to set up results notifier: %w", err)
		}
		notifier = js
		natsConn = js
		log.Info().Str("url", jsCfg.URL).Str("subject", jsCfg.Subject).Msg("results notifications enabled")
	}

	coordinator := orchestrator.NewCoordinator(
		store,
		gw.Registry(),
		gw.Broadcaster(),
		outbox.NewMetricNotifier(notifier, m),
		clockwork.NewRealClock(),
		m,
		orchestrator.Config{NotifyTimeout: cfg.Draft.NotifyTimeout},
	)

	roomsApp := rooms.NewApp(store, coordinator, gw.Broadcaster(), rooms.Defaults{
		TurnTimeSec: cfg.Draft.DefaultTurnTimeSec,
		TotalRounds: cfg.Draft.DefaultTotalRounds,
	})

	var pinger outbox.Pinger
	if database != nil {
		pinger = database
	}

	return &Services{
		Metrics:     m,
		Gateway:     gw,
		Coordinator: coordinator,
		Rooms:       rooms.NewHandler(roomsApp),
		Health:      outbox.NewHealthChecker(pinger, natsConn),
		jetstream:   js,
	}, nil
}

// Close stops countdowns, drops live sockets and drains the broker
// connection, in that order.
func (s *Services) Close() {
	s.Coordinator.Close()
	s.Gateway.CloseAll()
	if s.jetstream != nil {
		if err := s.jetstream.Close(); err != nil {
			log.Error().Err(err).Msg("failed to drain NATS connection")
		}
	}
}
