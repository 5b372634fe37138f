package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoJournal is returned by Lines when journaling is disabled.
var ErrNoJournal = errors.New("cache: journal disabled")

// Journal records committed lines for operators. The engine only writes
// to it; TryGet never consults it.
type Journal interface {
	Record(ctx context.Context, fp Fingerprint, text string) error
	Lines(ctx context.Context) (map[string]string, error)
}

// NopJournal discards everything.
type NopJournal struct{}

func (NopJournal) Record(context.Context, Fingerprint, string) error { return nil }

func (NopJournal) Lines(context.Context) (map[string]string, error) { return nil, ErrNoJournal }

// RedisJournal stores lines in one Redis hash per process session.
type RedisJournal struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

type RedisConfig struct {
	Prefix    string
	SessionID string
	// TTL refreshes the hash expiry on every write; 0 means no expiry.
	TTL time.Duration
}

// NewRedisJournal creates a Redis-backed journal under <prefix>:<session>.
func NewRedisJournal(client *redis.Client, config RedisConfig) *RedisJournal {
	key := config.SessionID
	if config.Prefix != "" {
		key = config.Prefix + ":" + key
	}
	return &RedisJournal{
		client: client,
		key:    key,
		ttl:    config.TTL,
	}
}

// Key returns the Redis hash holding this session's lines.
func (j *RedisJournal) Key() string {
	return j.key
}

// Record stores text under the fingerprint's string form.
func (j *RedisJournal) Record(ctx context.Context, fp Fingerprint, text string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	pipe := j.client.TxPipeline()
	pipe.HSet(ctx, j.key, fp.String(), text)
	if j.ttl > 0 {
		pipe.Expire(ctx, j.key, j.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis journal record failed: %w", err)
	}
	return nil
}

// Lines returns every recorded line keyed by fingerprint string.
func (j *RedisJournal) Lines(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	lines, err := j.client.HGetAll(ctx, j.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis journal read failed: %w", err)
	}
	return lines, nil
}

// Ping checks if Redis connection is healthy.
func (j *RedisJournal) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	return j.client.Ping(ctx).Err()
}
