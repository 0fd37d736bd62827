package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm/logger"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/channels"
	"github.com/glenwood/beacon/internal/config"
	"github.com/glenwood/beacon/internal/database"
	"github.com/glenwood/beacon/internal/handlers"
	"github.com/glenwood/beacon/internal/jobs"
	"github.com/glenwood/beacon/internal/middleware"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it (this is fine if using environment variables): %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Beacon EMS...")

	// Load the campus file: branding, actions, zones, channels
	campus, err := config.LoadCampus(cfg.CampusConfigPath)
	if err != nil {
		log.Fatalf("Failed to load campus config: %v", err)
	}
	log.Printf("Campus config loaded: site %q, %d actions, %d zones",
		campus.Branding.SiteName, len(campus.Actions), len(campus.Zones))

	// Initialize JWT authentication middleware
	if cfg.AdminPassword == "" {
		log.Fatalf("ADMIN_PASSWORD is not set")
	}

	// Hash the admin password
	passwordHash, err := middleware.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	jwtAuthMiddleware := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: passwordHash,
		JWTSecret:         cfg.JWTSecret,
		JWTExpiryHours:    cfg.JWTExpiryHours,
		SkipPaths: []string{
			"/health",
			"/auth/login",
			// Device polls only. Message posts on the same subtree stay
			// behind the bearer token.
			"GET /api/display/*",
			"/api/acknowledge*",
			"/api/alerts/latest",
			"/rss/*",
			"/xml/*",
			"/ws/*",
			"/metrics",
		},
	})
	log.Printf("JWT authentication enabled for user: %s", cfg.AdminUsername)

	// Initialize database connection
	if err := database.Connect(cfg.DatabaseURL, logger.Warn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run database migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Build the alert engine core
	state := alerting.NewState()
	displays := alerting.NewDisplayRegistry()
	acks := alerting.NewAckTracker(state)
	historyStore := database.NewHistoryStore(database.GetDB())
	drillStore := database.NewDrillStore(database.GetDB())

	actions := make([]alerting.Action, 0, len(campus.Actions))
	for _, a := range campus.Actions {
		actions = append(actions, alerting.Action(a))
	}

	dispatcher := alerting.NewDispatcher(alerting.Config{
		State:          state,
		Displays:       displays,
		Acks:           acks,
		History:        historyStore,
		AllowedActions: actions,
		Zones:          campus.ZoneDisplays(),
	})

	// Register notification channels from campus config
	feedState := channels.NewFeedState(actions)
	for _, notifier := range channels.Build(campus, feedState) {
		dispatcher.RegisterNotifier(notifier)
	}

	// Banner hub pushes lifecycle events to dashboard websockets
	bannerHub := handlers.NewBannerHub(state)
	dispatcher.SetBroadcaster(bannerHub)

	// Initialize handlers
	httpHandler := handlers.NewHTTPHandler(state)
	alertHandler := handlers.NewAlertHandler(dispatcher, state)
	displayHandler := handlers.NewDisplayHandler(displays)
	ackHandler := handlers.NewAckHandler(acks)
	drillHandler := handlers.NewDrillHandler(drillStore, actions)
	historyHandler := handlers.NewHistoryHandler(historyStore)
	feedHandler := handlers.NewFeedHandler(feedState, campus.Branding, state)
	authHandler := handlers.NewAuthHandler(jwtAuthMiddleware, cfg.JWTExpiryHours)

	// Set up HTTP server routes
	mux := http.NewServeMux()
	httpHandler.SetupRoutes(mux)
	alertHandler.SetupRoutes(mux)
	displayHandler.SetupRoutes(mux)
	ackHandler.SetupRoutes(mux)
	drillHandler.SetupRoutes(mux)
	historyHandler.SetupRoutes(mux)
	feedHandler.SetupRoutes(mux)
	authHandler.SetupRoutes(mux)
	bannerHub.SetupRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Wrap all routes: request-ID, then CORS, then JWT authentication
	corsMiddleware := middleware.NewCORSMiddleware() // Allow all origins
	handler := middleware.RequestIDMiddleware(corsMiddleware.Wrap(jwtAuthMiddleware.Wrap(mux)))

	// Start HTTP server in goroutine
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: handler,
	}

	go func() {
		log.Printf("Starting HTTP server on port %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Start the drill scheduler loop
	stop := make(chan struct{})
	drillScheduler := jobs.NewDrillSchedulerJob(drillStore, dispatcher, time.Duration(cfg.DrillPollSeconds)*time.Second)
	go drillScheduler.Start(stop)

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Beacon is running! Press Ctrl+C to exit.")
	log.Printf("Trigger endpoint: http://localhost:%d/api/alerts/trigger", cfg.HTTPPort)
	log.Printf("Health check endpoint: http://localhost:%d/health", cfg.HTTPPort)

	<-sigChan
	log.Println("Received shutdown signal, cleaning up...")

	close(stop)

	log.Println("Shutting down HTTP server...")
	if err := httpServer.Close(); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if err := database.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Shutdown complete")
}
