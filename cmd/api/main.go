package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"wallgrid/internal/backend"
	"wallgrid/internal/config"
	"wallgrid/internal/gallery"
	transporthttp "wallgrid/internal/http"
	"wallgrid/internal/identity"
	"wallgrid/internal/platform/database"
	"wallgrid/internal/platform/kvstore"
	"wallgrid/internal/platform/logging"
	"wallgrid/internal/platform/migrate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	client := backend.New(backend.Options{
		Endpoint:  cfg.BackendEndpoint,
		ProjectID: cfg.BackendProjectID,
		APIKey:    cfg.BackendAPIKey,
	})

	snapshots, snapshotCleanup := buildSnapshotStore(ctx, cfg, logger)
	if snapshotCleanup != nil {
		defer snapshotCleanup()
	}

	var profiles identity.ProfileSource
	if google, err := identity.NewGoogleProfileSource(ctx, cfg.GoogleIssuerURL); err != nil {
		logger.Warn("google profile source unavailable; oauth profile enrichment disabled", "error", err)
	} else {
		profiles = google
	}

	identitySvc := identity.NewService(client.Account(), profiles, snapshots, logger)

	meta, metaCleanup, err := buildMetadataStore(ctx, cfg, client, logger)
	if err != nil {
		logger.Error("failed to initialize metadata store", "error", err)
		os.Exit(1)
	}
	if metaCleanup != nil {
		defer metaCleanup()
	}

	gallerySvc := gallery.NewService(client.Storage(cfg.BackendBucketID), meta, snapshots, logger)
	statsSvc := gallery.NewStatsService(meta, logger)
	router := transporthttp.NewRouter(cfg, identitySvc, gallerySvc, statsSvc, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("Wallgrid API listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// buildSnapshotStore prefers redis when configured but never blocks startup
// on it: an unreachable redis degrades to the in-process store.
func buildSnapshotStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (kvstore.Store, func()) {
	if !cfg.UseRedisSnapshots() {
		return kvstore.NewMemory(), nil
	}

	redisStore, err := kvstore.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable; falling back to in-memory snapshots", "addr", cfg.RedisAddr, "error", err)
		return kvstore.NewMemory(), nil
	}

	logger.Info("connected to redis", "addr", cfg.RedisAddr)
	return redisStore, func() {
		_ = redisStore.Close()
	}
}

func buildMetadataStore(ctx context.Context, cfg config.Config, client *backend.Client, logger *slog.Logger) (gallery.MetadataStore, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory metadata store")
		return gallery.NewMemoryStore(), nil, nil
	}

	if cfg.UsePostgresStore() {
		db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			_ = db.Close()
		}
		if err := migrate.Apply(ctx, db, logger); err != nil {
			cleanup()
			return nil, nil, err
		}
		logger.Info("connected to postgres")
		return gallery.NewPostgresStore(db), cleanup, nil
	}

	logger.Info("using remote document metadata store", "database", cfg.BackendDatabaseID)
	store := gallery.NewRemoteStore(
		client.Databases(cfg.BackendDatabaseID),
		cfg.WallpapersCollection,
		cfg.LikesCollection,
		cfg.FavoritesCollection,
	)
	return store, nil, nil
}
