package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/clients/yahoo"
	"github.com/arniesaha/portfolio-tracker/internal/config"
	"github.com/arniesaha/portfolio-tracker/internal/database"
	"github.com/arniesaha/portfolio-tracker/internal/modules/holdings"
	"github.com/arniesaha/portfolio-tracker/internal/modules/importer"
	"github.com/arniesaha/portfolio-tracker/internal/modules/portfolio"
	"github.com/arniesaha/portfolio-tracker/internal/modules/prices"
	"github.com/arniesaha/portfolio-tracker/internal/modules/transactions"
	"github.com/arniesaha/portfolio-tracker/internal/scheduler"
	"github.com/arniesaha/portfolio-tracker/internal/server"
	"github.com/arniesaha/portfolio-tracker/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootstrap := logger.New(logger.Config{Level: "info"})
		bootstrap.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Portfolio Tracker")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Repositories
	holdingRepo := holdings.NewRepository(db.Conn(), log)
	transactionRepo := transactions.NewRepository(db.Conn(), log)
	priceRepo := prices.NewRepository(db.Conn(), log)
	snapshotRepo := portfolio.NewRepository(db.Conn(), log)

	// Services
	yahooClient := yahoo.NewClient(log)
	transactionService := transactions.NewService(transactionRepo, holdingRepo, log)
	importService := importer.NewService(holdingRepo, transactionRepo, log)
	priceService := prices.NewService(yahooClient, holdingRepo, priceRepo, log)
	portfolioService := portfolio.NewService(holdingRepo, priceRepo, snapshotRepo, log)

	// Background jobs
	sched := scheduler.New(log)
	if err := registerJobs(sched, cfg, db, priceService, portfolioService, snapshotRepo, priceRepo, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:         cfg.Port,
		Log:          log,
		DB:           db,
		DevMode:      cfg.DevMode,
		Holdings:     holdings.NewHandlers(holdingRepo, log),
		Transactions: transactions.NewHandlers(transactionRepo, transactionService, log),
		Importer:     importer.NewHandlers(importService, log),
		Portfolio:    portfolio.NewHandlers(portfolioService, log),
		Prices:       prices.NewHandlers(priceService, log),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	db *database.DB,
	priceService *prices.Service,
	portfolioService *portfolio.Service,
	snapshotRepo *portfolio.Repository,
	priceRepo *prices.Repository,
	log zerolog.Logger,
) error {
	if err := sched.AddJob(cfg.PriceRefreshSchedule, scheduler.NewPriceRefreshJob(priceService, log)); err != nil {
		return err
	}
	if err := sched.AddJob(cfg.SnapshotSchedule, scheduler.NewSnapshotJob(portfolioService, log)); err != nil {
		return err
	}
	return sched.AddJob(
		cfg.MaintenanceSchedule,
		scheduler.NewMaintenanceJob(db, snapshotRepo, priceRepo, cfg.SnapshotRetainDays, log),
	)
}
