package queue

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by Dequeue after the queue is shut down and drained.
var ErrClosed = errors.New("queue closed")

// Queue is the delivery collaborator. Exclusivity ("exactly one worker holds
// this message") is the queue's concern; the pipeline only consumes.
type Queue interface {
	// Enqueue publishes a message. ttl > 0 lets the backend drop the
	// message if it is not consumed in time.
	Enqueue(ctx context.Context, m Message, ttl time.Duration) error

	// Dequeue blocks until a message is available or ctx is done.
	Dequeue(ctx context.Context) (Message, error)
}
