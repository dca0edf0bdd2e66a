// uploadd serves the upload-side HTTP API: document ingestion plus read
// access to the job log.
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

	"github.com/unistad/document-archiver/internal/common"
	"github.com/unistad/document-archiver/internal/export"
	"github.com/unistad/document-archiver/internal/queue"
	"github.com/unistad/document-archiver/internal/repository"
	"github.com/unistad/document-archiver/internal/server"
	"github.com/unistad/document-archiver/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("opening job store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("closing job store", "error", cerr)
		}
	}()
	jobs := repository.NewJobRepository(db, cfg.Database.Driver, logger)

	var store storage.Storage
	if cfg.Storage.Backend == "s3" {
		store, err = storage.NewS3(ctx, storage.S3Config{
			Bucket: cfg.Storage.Bucket,
			Prefix: cfg.Storage.Prefix,
			Region: cfg.Storage.Region,
		}, logger)
		if err != nil {
			logger.Error("opening storage", "error", err)
			os.Exit(1)
		}
	} else {
		store = storage.NewFilesystem(cfg.Storage.RootDir, logger)
	}

	// The upload side only enqueues; the in-memory queue is useless here
	// outside of single-process experiments.
	var q queue.Queue
	if cfg.Queue.Driver == "redis" {
		rq := queue.NewRedis(queue.RedisConfig{
			Addr: cfg.Queue.RedisAddr,
			Name: cfg.Queue.Name,
		}, logger)
		defer func() {
			if cerr := rq.Close(); cerr != nil {
				logger.Error("closing queue", "error", cerr)
			}
		}()
		q = rq
	} else {
		mq := queue.NewMemory(64)
		defer mq.Close()
		q = mq
	}

	h := server.NewHandlers(logger, store, jobs,
		q, export.NewService(jobs, logger), cfg.Partition, cfg.Queue.TTL)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.SetupRoutes(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("uploadd listening", "addr", cfg.Server.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
		logger.Info("uploadd stopped")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}
}
