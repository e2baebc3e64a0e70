package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/baixafy/baixafy-api/internal/archive"
	"github.com/baixafy/baixafy-api/internal/cleanup"
	"github.com/baixafy/baixafy-api/internal/config"
	"github.com/baixafy/baixafy-api/internal/entitlement"
	"github.com/baixafy/baixafy-api/internal/fetcher/spotdl"
	"github.com/baixafy/baixafy-api/internal/job"
	"github.com/baixafy/baixafy-api/internal/platform/sqlite"
	userrepo "github.com/baixafy/baixafy-api/internal/repository/user"
	"github.com/baixafy/baixafy-api/internal/server"
)

func main() {
	cfg := config.Load()

	// Root context: cancelled on SIGINT/SIGTERM so in-flight fetches stop
	// promptly during graceful shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Working directories
	scratchRoot := filepath.Join(cfg.DataDir, "scratch")
	archiveRoot := filepath.Join(cfg.DataDir, "archives")
	for _, dir := range []string{scratchRoot, archiveRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("failed to create data dir", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	// Database (users and download history only; job state is in-memory)
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Services
	entitleSvc := entitlement.NewService(userrepo.NewRepository(db.DB), int64(cfg.FreeDownloads))
	fetch := spotdl.New(
		spotdl.WithBinary(cfg.SpotdlPath),
		spotdl.WithFFmpeg(cfg.FFmpegPath),
		spotdl.WithTimeout(cfg.FetchTimeout),
	)
	store := job.NewStore()
	runner := job.NewRunner(store, fetch, archive.NewBuilder(), entitleSvc, scratchRoot, archiveRoot)

	// Worker pool: executes submitted jobs in the background
	pool := job.NewPool(runner, cfg.Workers)
	poolDone := make(chan struct{})
	go func() {
		pool.Run(rootCtx)
		close(poolDone)
	}()

	jobSvc := job.NewService(store, entitleSvc, pool, scratchRoot)

	// Retention sweeper: reclaims expired archives and stale scratch dirs
	sweeper := cleanup.NewSweeper(store, scratchRoot, archiveRoot, cfg.Retention, cfg.SweepInterval)
	sweeper.SweepOrphans()
	go sweeper.Run(rootCtx)

	// HTTP server — rootCtx is used as BaseContext so every request context
	// inherits from it and is cancelled on shutdown.
	srv := server.New(rootCtx, cfg.Port, jobSvc, entitleSvc, fetch, archiveRoot)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("server started", "port", cfg.Port, "workers", cfg.Workers, "retention", cfg.Retention.String())
	<-done

	// Cancel root context first so running fetch processes are killed and
	// workers wind down.
	rootCancel()
	<-poolDone

	// Then drain connections with a deadline.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
