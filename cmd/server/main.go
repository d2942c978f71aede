package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nattapongd/Fund-Compare-Backend/internal/api"
	"github.com/nattapongd/Fund-Compare-Backend/internal/config"
	"github.com/nattapongd/Fund-Compare-Backend/internal/database"
	"github.com/nattapongd/Fund-Compare-Backend/internal/repository"
	"github.com/nattapongd/Fund-Compare-Backend/internal/sec"
	"github.com/nattapongd/Fund-Compare-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	fundRepo := repository.NewFundRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	statsRepo := repository.NewPeerStatsRepository(db)

	// Create services
	settingsService, err := service.NewSettingsService(db, cfg.Security.FernetKey)
	if err != nil {
		log.Fatalf("Failed to create settings service: %v", err)
	}

	// Environment keys take precedence; fall back to stored secrets
	factsheetKey := cfg.SEC.FactsheetAPIKey
	if factsheetKey == "" {
		if stored, err := settingsService.GetSecret(context.Background(), service.SettingSECFactsheetKey); err == nil {
			factsheetKey = stored
		}
	}
	secClient := sec.NewAPIClient(cfg.SEC.BaseURL, factsheetKey)

	systemService := service.NewSystemService(db)
	fundService := service.NewFundService(fundRepo)
	peerStatsService := service.NewPeerStatsService(
		fundRepo,
		snapshotRepo,
		statsRepo,
		cfg.Peer.MinCountHard,
	)
	rankingService := service.NewRankingService(
		fundRepo,
		snapshotRepo,
		peerStatsService,
		cfg.Peer.MinCountHard,
	)
	classificationService := service.NewClassificationService(fundRepo, secClient)

	// Schedule the nightly reclassification pass
	scheduler := cron.New()
	if cfg.Peer.ReclassifySchedule != "" {
		_, err := scheduler.AddFunc(cfg.Peer.ReclassifySchedule, func() {
			log.Println("Starting scheduled peer reclassification")
			summary, err := classificationService.ClassifyAllFunds(context.Background())
			if err != nil {
				log.Printf("Scheduled peer reclassification failed: %v", err)
				return
			}
			log.Printf("Peer reclassification finished: %d/%d funds classified with peer key",
				summary.WithPeerKey, summary.Processed)
		})
		if err != nil {
			log.Fatalf("Invalid reclassification schedule %q: %v", cfg.Peer.ReclassifySchedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:         systemService,
		Fund:           fundService,
		Ranking:        rankingService,
		PeerStats:      peerStatsService,
		Classification: classificationService,
		Settings:       settingsService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
