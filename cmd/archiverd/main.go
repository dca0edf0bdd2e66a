// archiverd is the conversion worker: it drains the processing queue and
// drives each uploaded document to its archive or quarantine destination.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/unistad/document-archiver/internal/classify"
	"github.com/unistad/document-archiver/internal/common"
	"github.com/unistad/document-archiver/internal/extract"
	"github.com/unistad/document-archiver/internal/pipeline"
	"github.com/unistad/document-archiver/internal/queue"
	"github.com/unistad/document-archiver/internal/repository"
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

	settings, err := common.LoadSettings(cfg.Dictionaries)
	if err != nil {
		logger.Error("loading dictionaries file", "path", cfg.Dictionaries, "error", err)
		os.Exit(1)
	}
	dicts, err := classify.LoadDictionaries(settings)
	if err != nil {
		logger.Error("loading dictionaries", "error", err)
		os.Exit(1)
	}

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

	store, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("opening storage", "error", err)
		os.Exit(1)
	}

	q, closeQueue := buildQueue(cfg, logger)
	defer closeQueue()

	extractor := extract.NewPdfToText(extract.Config{Pdftotext: cfg.Extract.Pdftotext}, logger)
	proc := pipeline.NewProcessor(logger, store, jobs, extractor, dicts, pipeline.Folders{})
	worker := pipeline.NewWorker(q, proc, logger, cfg.Worker.ProcessTimeout)

	logger.Info("archiverd starting",
		"queue", cfg.Queue.Driver,
		"storage", cfg.Storage.Backend,
		"partition", cfg.Partition,
	)
	if err := worker.Run(ctx); err != nil {
		logger.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("archiverd stopped")
}

func buildStorage(ctx context.Context, cfg *common.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.Storage.Backend == "s3" {
		return storage.NewS3(ctx, storage.S3Config{
			Bucket: cfg.Storage.Bucket,
			Prefix: cfg.Storage.Prefix,
			Region: cfg.Storage.Region,
		}, logger)
	}
	return storage.NewFilesystem(cfg.Storage.RootDir, logger), nil
}

func buildQueue(cfg *common.Config, logger *slog.Logger) (queue.Queue, func()) {
	if cfg.Queue.Driver == "redis" {
		q := queue.NewRedis(queue.RedisConfig{
			Addr: cfg.Queue.RedisAddr,
			Name: cfg.Queue.Name,
		}, logger)
		return q, func() {
			if err := q.Close(); err != nil {
				logger.Error("closing queue", "error", err)
			}
		}
	}
	q := queue.NewMemory(64)
	return q, q.Close
}
