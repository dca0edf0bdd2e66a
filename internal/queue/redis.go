package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a list-backed queue (LPUSH producer, BRPOP consumer). One list
// per partition/category; BRPOP gives single-consumer-per-message delivery.
type Redis struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

type RedisConfig struct {
	Addr string
	Name string // list key, e.g. "unistad-toprocess"
}

func NewRedis(cfg RedisConfig, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})
	return &Redis{client: client, key: cfg.Name, logger: logger}
}

// NewRedisWithClient wires an existing client; used by tests.
func NewRedisWithClient(client *redis.Client, name string, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, key: name, logger: logger}
}

func (q *Redis) Enqueue(ctx context.Context, m Message, ttl time.Duration) error {
	raw, err := EncodeMessage(m, ttl)
	if err != nil {
		return fmt.Errorf("encode queue message: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.key, err)
	}
	q.logger.Info("message enqueued", "queue", q.key, "job_id", m.JobID, "file", m.FileName)
	return nil
}

// Dequeue blocks on BRPOP in short intervals so ctx cancellation is honored.
// Expired and malformed messages are dropped with a log line and the wait
// continues.
func (q *Redis) Dequeue(ctx context.Context) (Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}
		res, err := q.client.BRPop(ctx, 2*time.Second, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue // timed out empty, poll again
		}
		if err != nil {
			if ctx.Err() != nil {
				return Message{}, ctx.Err()
			}
			return Message{}, fmt.Errorf("brpop %s: %w", q.key, err)
		}
		// res = [key, value]
		m, expired, err := DecodeMessage([]byte(res[1]))
		if err != nil {
			q.logger.Error("dropping malformed queue message", "queue", q.key, "error", err)
			continue
		}
		if expired {
			q.logger.Warn("dropping expired queue message", "queue", q.key, "job_id", m.JobID)
			continue
		}
		return m, nil
	}
}

func (q *Redis) Close() error {
	return q.client.Close()
}
