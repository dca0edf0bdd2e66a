package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/unistad/document-archiver/internal/queue"
)

// Worker consumes the queue one message at a time and hands each to the
// processor. A document is processed end-to-end by a single worker; run more
// worker instances for concurrency.
type Worker struct {
	queue   queue.Queue
	proc    *Processor
	logger  *slog.Logger
	timeout time.Duration
}

func NewWorker(q queue.Queue, proc *Processor, logger *slog.Logger, timeout time.Duration) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &Worker{queue: q, proc: proc, logger: logger, timeout: timeout}
}

// Run loops until ctx is done or the queue closes. Processing errors are
// logged and the loop continues; queue-level redelivery is the only retry
// mechanism.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started")
	for {
		msg, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrClosed) {
				w.logger.Info("worker stopped")
				return nil
			}
			return err
		}

		jobCtx, cancel := context.WithTimeout(ctx, w.timeout)
		if err := w.proc.Process(jobCtx, msg); err != nil {
			w.logger.Error("job processing failed", "job_id", msg.JobID, "error", err)
		}
		cancel()
	}
}
