package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/dshills/bookcatalog/internal/httpapi"
	"github.com/dshills/bookcatalog/internal/ingestion"
	"github.com/dshills/bookcatalog/internal/storage"
)

var reindexOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the REST API together with the background index workers, the
ingestion runner and, when SWEEP_INTERVAL is set, the stuck-job sweeper.

The search index lives in memory and starts empty. Pass --reindex to build
it from the catalog before accepting requests, or call
POST /api/v1/search/reindex-all later.

SIGINT or SIGTERM stops the server gracefully.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&reindexOnStart, "reindex", false, "build the search index before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			a.logger.Error("shutdown failed", "error", err)
		}
	}()

	a.logger.Info("starting bookcatalog",
		"version", version,
		"env", a.cfg.Env,
		"build_mode", storage.BuildMode,
		"driver", storage.DriverName,
		"blob_store", a.blobs.Kind())

	if !a.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	a.start(ctx)

	if reindexOnStart {
		stats, err := a.searcher.ReindexAll(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("initial reindex finished", "indexed", stats.IndexedCount, "failed", stats.FailedCount)
	}

	if interval := a.cfg.Ingestion.SweepInterval.Duration; interval > 0 {
		sweeper := ingestion.NewSweeper(a.tracker, interval, a.cfg.Ingestion.StuckThresholdMinutes, a.logger)
		go func() {
			if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("sweeper stopped", "error", err)
			}
		}()
		defer sweeper.Stop()
	}

	server := httpapi.NewServer(httpapi.Deps{
		Store:    a.store,
		Catalog:  a.catalog,
		Auth:     a.auth,
		Searcher: a.searcher,
		Tracker:  a.tracker,
		Index:    a.indexer.Index(),
		Redis:    a.redis,
		Logger:   a.logger,
	}, httpapi.Options{
		CORSOrigins:    a.cfg.CORSOrigins,
		RateLimit:      a.cfg.RateLimit.Requests,
		RateWindow:     time.Duration(a.cfg.RateLimit.WindowSeconds) * time.Second,
		MaxUploadBytes: int64(a.cfg.Storage.MaxUploadMB) << 20,
		Version:        version,
		Env:            a.cfg.Env,
		Driver:         storage.DriverName,
		BuildMode:      storage.BuildMode,
	})

	err = server.Run(ctx, a.cfg.HTTPAddr)
	a.logger.Info("server stopped")
	return err
}
