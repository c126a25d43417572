package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/showcase/service/internal/config"
	"github.com/showcase/service/internal/db"
	"github.com/showcase/service/internal/kv"
	"github.com/showcase/service/internal/logging"
	"github.com/showcase/service/internal/storage"
)

// blobPath is where the API serves blobs kept by the local storage backend.
const blobPath = "/blobs"

// app holds the long-lived resources shared by the subcommands.
type app struct {
	cfg     *config.Config
	store   kv.Store
	closers []func()
}

// setup loads and validates configuration, initializes logging and opens the
// project store.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := logging.Init(cfg.LogLevel, !cfg.IsProduction()); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{cfg: cfg}
	store, err := a.openStore(cmd.Context())
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("close project store")
		}
	})
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openStore builds the configured KV backend, wrapped with the JSON file
// fallback unless the backend already is that file.
func (a *app) openStore(ctx context.Context) (kv.Store, error) {
	cfg := a.cfg
	var primary kv.Store
	switch cfg.KVBackend {
	case "postgres":
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("database migration failed: %w", err)
		}
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		primary = kv.NewPostgresStore(pool)
	case "bolt":
		s, err := kv.NewBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		primary = s
	case "json":
		return kv.NewJSONFileStore(cfg.JSONFallbackPath)
	case "memory":
		primary = kv.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown KV backend %q", cfg.KVBackend)
	}

	if cfg.JSONFallbackPath == "" {
		return primary, nil
	}
	fallback, err := kv.NewJSONFileStore(cfg.JSONFallbackPath)
	if err != nil {
		primary.Close()
		return nil, err
	}
	log.Info().Str("backend", cfg.KVBackend).Str("fallback", fallback.Path()).Msg("project store ready")
	return kv.NewFallback(primary, fallback), nil
}

// openStorage builds the blob store. For the local backend it also returns
// the handler that serves the blobs under blobPath.
func (a *app) openStorage(ctx context.Context) (storage.Storage, http.Handler, error) {
	cfg := a.cfg
	switch cfg.StorageBackend {
	case "minio":
		s, err := storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
			UseSSL:     cfg.StorageUseSSL,
			PublicRead: cfg.StoragePublicRead,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("object storage init failed: %w", err)
		}
		return s, nil, nil
	case "local":
		base := cfg.StoragePublicBase
		if base == "" {
			base = blobPath
		}
		s, err := storage.NewLocalStorage(cfg.StorageLocalRoot, base)
		if err != nil {
			return nil, nil, err
		}
		return s, http.StripPrefix(blobPath, s.Handler()), nil
	}
	return nil, nil, errors.New("unknown storage backend " + cfg.StorageBackend)
}
