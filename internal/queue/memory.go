package queue

import (
	"context"
	"sync"
	"time"
)

// Memory is a channel-backed queue for development and tests. Messages go
// through the same encode/validate/decode path as the Redis backend.
type Memory struct {
	ch chan []byte

	mu     sync.Mutex
	closed bool
}

func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 256
	}
	return &Memory{ch: make(chan []byte, size)}
}

func (q *Memory) Enqueue(ctx context.Context, m Message, ttl time.Duration) error {
	raw, err := EncodeMessage(m, ttl)
	if err != nil {
		return err
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.mu.Unlock()
	select {
	case q.ch <- raw:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Memory) Dequeue(ctx context.Context) (Message, error) {
	for {
		select {
		case raw, ok := <-q.ch:
			if !ok {
				return Message{}, ErrClosed
			}
			m, expired, err := DecodeMessage(raw)
			if err != nil || expired {
				continue
			}
			return m, nil
		case <-ctx.Done():
			return Message{}, ctx.Err()
		}
	}
}

// Close stops accepting messages; pending messages can still be dequeued.
func (q *Memory) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
