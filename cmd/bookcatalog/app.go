package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dshills/bookcatalog/internal/auth"
	"github.com/dshills/bookcatalog/internal/blob"
	"github.com/dshills/bookcatalog/internal/catalog"
	"github.com/dshills/bookcatalog/internal/config"
	"github.com/dshills/bookcatalog/internal/indexer"
	"github.com/dshills/bookcatalog/internal/ingestion"
	"github.com/dshills/bookcatalog/internal/logging"
	"github.com/dshills/bookcatalog/internal/searcher"
	"github.com/dshills/bookcatalog/internal/storage"
)

// app holds the wired components shared by the subcommands
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	store    *storage.SQLiteStorage
	blobs    blob.Store
	redis    *redis.Client
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	catalog  *catalog.Service
	auth     *auth.Service
	runner   *ingestion.Runner
	tracker  *ingestion.Tracker
}

// loadConfig reads and validates the configuration for this process
func loadConfig(logOut io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	generated, err := cfg.EnsureSecret()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, nil, err
	}
	if generated {
		logger.Warn("SECRET_KEY not set, using a random development secret")
	}
	return cfg, logger, nil
}

// newApp opens storage and builds every component. Background workers are
// not started; see start.
func newApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, logger, err := loadConfig(logOut)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, store: store}

	a.blobs, err = newBlobStore(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			// The rate limiter fails open, so an unreachable redis is not fatal
			logger.Warn("redis unreachable", "addr", cfg.Redis.Addr, "error", err)
		}
		cancel()
	}

	a.indexer = indexer.New(store, indexer.NewIndex(), logger, &indexer.Config{
		Workers:   cfg.Index.Workers,
		QueueSize: cfg.Index.QueueSize,
	})
	a.searcher = searcher.NewSearcher(store, a.indexer, logger, cfg.Index.SearchCacheSize)
	a.catalog = catalog.New(store, a.indexer, a.blobs, logger)

	tokens := auth.NewTokenIssuer(cfg.SecretKey, time.Duration(cfg.AccessTokenExpireMinutes)*time.Minute)
	a.auth = auth.NewService(store, tokens, logger)

	a.runner = ingestion.NewRunner(store, logger, ingestion.RunnerConfig{
		Workers: cfg.Ingestion.Workers,
		Delay:   cfg.Ingestion.Delay.Duration,
	})
	a.tracker = ingestion.NewTracker(store, a.runner, logger)
	return a, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	if !cfg.Storage.UseS3 {
		return blob.NewLocalStore(cfg.Storage.UploadDir)
	}
	s3, err := blob.NewS3Store(blob.S3Config{
		Endpoint:  cfg.Storage.S3Endpoint,
		AccessKey: cfg.Storage.S3AccessKey,
		SecretKey: cfg.Storage.S3SecretKey,
		Bucket:    cfg.Storage.S3Bucket,
		Region:    cfg.Storage.S3Region,
		UseSSL:    cfg.Storage.S3UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare bucket %s: %w", cfg.Storage.S3Bucket, err)
	}
	return s3, nil
}

// start launches the index pool and the ingestion runner
func (a *app) start(ctx context.Context) {
	a.indexer.Start(ctx)
	a.runner.Start()
}

// close stops the workers and releases connections. Workers that were never
// started stop as a no-op.
func (a *app) close() error {
	a.runner.Stop()
	a.indexer.Stop()

	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
