package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/SelJom/ClarityAI/internal/config"
	"github.com/SelJom/ClarityAI/internal/identity"
	"github.com/SelJom/ClarityAI/internal/remote"
	"github.com/SelJom/ClarityAI/internal/state"
	"github.com/SelJom/ClarityAI/internal/store"
	"github.com/SelJom/ClarityAI/internal/stream"
	"github.com/SelJom/ClarityAI/internal/syncer"
)

// app is everything a command needs, opened on the local database.
type app struct {
	cfg     *config.Config
	db      *store.SQLiteStore
	stores  state.Stores
	id      *identity.Identity
	profile *remote.ProfileService
	content *remote.ContentService
	sync    *syncer.Syncer
	logger  *slog.Logger
}

func openApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	id, err := identity.Resolve(ctx, db, cfg.UserID)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("resolving identity: %w", err)
	}

	profile, content := remote.NewServices(cfg.ProfileAPIURL, cfg.ContentAPIURL)
	a := &app{
		cfg:     cfg,
		db:      db,
		stores:  state.Open(ctx, db, logger),
		id:      id,
		profile: profile,
		content: content,
		logger:  logger,
	}
	a.sync = syncer.New(id.UserID(), a.stores, a.profile, a.content, logger)
	return a, nil
}

// streamClient returns a streaming client for the current user.
func (a *app) streamClient() *stream.Client {
	var audio stream.AudioSink = stream.Discard{}
	if a.cfg.AudioDir != "" {
		audio = stream.FileSink{Dir: a.cfg.AudioDir, Logger: a.logger}
	}
	return stream.New(stream.Config{
		BaseURL:   a.cfg.AgentWSURL,
		SessionID: a.id.UserID(),
		ReadLimit: a.cfg.StreamReadLimit,
	}, a.stores.Journal, audio, a.logger)
}

// Close waits for pending remote pushes, then closes the database.
func (a *app) Close() {
	a.sync.Wait()
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
}
