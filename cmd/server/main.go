// Package main is the entry point for the Folio investment tracking server.
// It wires the holding store, quote client, portfolio service and HTTP API,
// and runs the daily snapshot job in the background.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/finai/folio/internal/clients/yahoo"
	"github.com/finai/folio/internal/config"
	"github.com/finai/folio/internal/database"
	"github.com/finai/folio/internal/modules/holdings"
	investmenthandlers "github.com/finai/folio/internal/modules/holdings/handlers"
	"github.com/finai/folio/internal/modules/snapshots"
	snapshothandlers "github.com/finai/folio/internal/modules/snapshots/handlers"
	"github.com/finai/folio/internal/scheduler"
	"github.com/finai/folio/internal/server"
	"github.com/finai/folio/pkg/logger"
)

const version = "1.2.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use a fallback logger so the configuration error is still reported
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("version", version).Msg("Starting Folio")

	db, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "folio.db"),
		Name: "folio",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Quote gateway
	quoteClient := yahoo.NewClient(yahoo.Config{
		BaseURL: cfg.QuoteBaseURL,
		Timeout: time.Duration(cfg.QuoteTimeoutSecs) * time.Second,
	}, log)

	// Repositories
	holdingRepo := holdings.NewRepository(db.Conn(), log)
	linkRepo := holdings.NewLinkRepository(db.Conn(), log)
	snapshotRepo := snapshots.NewRepository(db.Conn(), log)

	// Services
	resolver := holdings.NewResolver(quoteClient, log)
	portfolioService := holdings.NewService(holdingRepo, linkRepo, resolver, log)
	snapshotService := snapshots.NewService(snapshotRepo, portfolioService, holdingRepo, log)

	// HTTP server
	srv := server.New(server.Config{
		Port:               cfg.Port,
		DevMode:            cfg.DevMode,
		Log:                log,
		InvestmentHandlers: investmenthandlers.NewHandler(portfolioService, log),
		SnapshotHandlers:   snapshothandlers.NewHandler(snapshotService, log),
		MarketHandlers:     server.NewMarketHandlers(quoteClient, log),
		SystemHandlers:     server.NewSystemHandlers(db, version, log),
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Daily portfolio snapshot job
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.SnapshotSchedule, scheduler.NewSnapshotJob(snapshotService, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register snapshot job")
	}
	sched.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
