// Clarity - local sync and streaming server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/SelJom/ClarityAI/internal/api"
	"github.com/SelJom/ClarityAI/internal/config"
	"github.com/SelJom/ClarityAI/internal/identity"
	"github.com/SelJom/ClarityAI/internal/metrics"
	"github.com/SelJom/ClarityAI/internal/middleware"
	"github.com/SelJom/ClarityAI/internal/remote"
	"github.com/SelJom/ClarityAI/internal/state"
	"github.com/SelJom/ClarityAI/internal/store"
	"github.com/SelJom/ClarityAI/internal/stream"
	"github.com/SelJom/ClarityAI/internal/syncer"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "remote", cfg.RemoteConfigured())

	// Initialize dependencies.
	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	if err := db.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", db.Path())

	stores := state.Open(context.Background(), db, logger)

	id, err := identity.Resolve(context.Background(), db, cfg.UserID)
	if err != nil {
		slog.Error("Failed to resolve identity", "error", err)
		os.Exit(1)
	}
	slog.Info("Identity resolved", "user_id", id.UserID(), "anonymous", id.Anonymous())

	// Initialize remote services. Unset URLs leave them unconfigured and
	// every operation stays local.
	profile, content := remote.NewServices(cfg.ProfileAPIURL, cfg.ContentAPIURL)

	var audio stream.AudioSink = stream.Discard{}
	if cfg.AudioDir != "" {
		audio = stream.FileSink{Dir: cfg.AudioDir, Logger: logger}
		slog.Info("Audio replies saved to disk", "dir", cfg.AudioDir)
	}
	streamClient := stream.New(stream.Config{
		BaseURL:   cfg.AgentWSURL,
		SessionID: id.UserID(),
		ReadLimit: cfg.StreamReadLimit,
	}, stores.Journal, audio, logger)
	if cfg.AgentWSURL == "" {
		slog.Info("Streaming disabled (AGENT_WS_URL and CONTENT_API_URL not set)")
	}

	syncWorker := syncer.New(id.UserID(), stores, profile, content, logger)

	events := api.NewBroker(0)
	stopWatching := api.WatchStores(events, stores)
	defer stopWatching()

	handler := api.NewHandler(api.Deps{
		Store:    db,
		Stores:   stores,
		Syncer:   syncWorker,
		Sender:   streamClient,
		Identity: id,
		Auth:     profile,
		Events:   events,
	})

	// Setup router.
	r := chi.NewRouter()

	origins := []string{"*"}
	if cfg.FrontendURL != "" {
		origins = []string{cfg.FrontendURL}
	}

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(origins))
	r.Use(identity.Middleware(id))

	handler.RegisterRoutes(r)
	r.Handle("/metrics", metrics.Handler())

	// Note: SSE connections require long timeouts (no WriteTimeout)
	// Keepalive runs every 10s to maintain connection
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,                 // 0 = no timeout for SSE support
		IdleTimeout:  120 * time.Second, // 2 minutes for idle connections
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start sync worker.
	syncWorker.Start(ctx, cfg.SyncInterval)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	streamClient.Close()
	syncWorker.Wait()

	slog.Info("Server stopped successfully")
}
