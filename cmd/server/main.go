package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"revenue-split-engine/internal/api"
	"revenue-split-engine/internal/config"
	"revenue-split-engine/internal/database"
	"revenue-split-engine/internal/oracle"
	"revenue-split-engine/internal/repository"
	"revenue-split-engine/internal/service"
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	engineRepo := repository.NewEngineRepository(db)
	recipientRepo := repository.NewRecipientRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	feedRepo := repository.NewPriceFeedRepository(db)
	eventRepo := repository.NewEventRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	feedClient := oracle.NewFeedClient(cfg.Oracle.BaseURL)

	// Create services
	systemService := service.NewSystemService(db)
	accessService := service.NewAccessService(roleRepo)
	waterfallService := service.NewWaterfallService(
		db,
		engineRepo,
		recipientRepo,
		ledgerRepo,
		feedRepo,
		eventRepo,
		accessService,
		feedClient,
	)
	registryService := service.NewRegistryService(
		db,
		engineRepo,
		recipientRepo,
		eventRepo,
		accessService,
	)
	engineService := service.NewEngineService(
		db,
		engineRepo,
		roleRepo,
		feedRepo,
		eventRepo,
		registryService,
		accessService,
	)
	ledgerService := service.NewLedgerService(
		db,
		ledgerRepo,
		engineRepo,
		eventRepo,
		waterfallService,
	)
	accountService := service.NewAccountService(accountRepo, cfg.Identity.Key)
	sweepService := service.NewSweepService(engineRepo, waterfallService)

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Engine:    engineService,
		Registry:  registryService,
		Waterfall: waterfallService,
		Ledger:    ledgerService,
		Account:   accountService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.Sweep.Enabled {
		if err := sweepService.Start(cfg.Sweep.Schedule); err != nil {
			log.Fatalf("Failed to start sweep: %v", err)
		}
		log.Printf("Auto-distribute sweep running (%s)", cfg.Sweep.Schedule)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Wait for interrupt (or server failure), then shut down gracefully.
	g.Go(func() error {
		<-ctx.Done()

		log.Println("Shutting down server...")

		if cfg.Sweep.Enabled {
			sweepService.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	log.Println("Server exited")
}
