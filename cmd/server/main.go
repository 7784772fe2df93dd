// Package main is the entry point for the dispatch console server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dispatch-console/backend/internal/analytics"
	"github.com/dispatch-console/backend/internal/api"
	"github.com/dispatch-console/backend/internal/dashboard"
	"github.com/dispatch-console/backend/internal/dispatch"
	"github.com/dispatch-console/backend/internal/remote"
	"github.com/dispatch-console/backend/internal/storage"
	"github.com/dispatch-console/backend/internal/storage/models"
	"github.com/dispatch-console/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// Parse command-line flags
	addr := flag.String("addr", ":8088", "HTTP server address")
	dataDir := flag.String("data", "/data", "Data directory for SQLite database")
	staticDir := flag.String("static", "./static", "Directory for static frontend files")
	city := flag.String("city", "", "Initial active city (overrides saved setting)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(*addr); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	// Load .env if present; real environment wins over file values
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Allow overriding version via environment (e.g., injected by container build/runtime)
	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting Dispatch Console (version: %s)...", version)

	// Initialize database
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %q: %v", *dataDir, err)
	}
	dbPath := *dataDir + "/dispatch-console.db"
	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	log.Printf("Console database at %s", db.Path())

	// Run migrations
	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize repositories
	settingsRepo := storage.NewSettingsRepository(db)
	journalRepo := storage.NewJournalRepository(db)

	// Load persisted console settings
	settings, err := settingsRepo.Load(context.Background(), models.Settings{
		Granularity: string(analytics.Monthly),
	})
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if *city != "" {
		settings.ActiveCity = *city
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize the query service client
	client := remote.NewClient(remote.DefaultConfig())

	// Initialize the dispatch synchronizer
	synchronizer := dispatch.NewSynchronizer(client, journalRepo, hub, settings.ActiveCity, 0)
	if err := synchronizer.Start(); err != nil {
		log.Fatalf("Failed to start synchronizer: %v", err)
	}

	// Initialize the dashboard controller
	controller := dashboard.NewController(client, hub, dashboard.Params{
		City:        settings.ActiveCity,
		Granularity: analytics.Granularity(settings.Granularity),
		StartDate:   settings.StartDate,
	}, 0)
	if err := controller.Start(); err != nil {
		log.Fatalf("Failed to start dashboard controller: %v", err)
	}

	// Initialize HTTP router
	router := api.NewRouter(api.Services{
		DB:           db,
		Hub:          hub,
		Synchronizer: synchronizer,
		Dashboard:    controller,
		Settings:     settingsRepo,
		StaticDir:    *staticDir,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop the pollers
	synchronizer.Stop()
	controller.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
