package cache

import (
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Config struct {
	RedisPrefix string
	JournalTTL  time.Duration
	// SessionID namespaces the journal; empty generates a fresh one so a
	// new process never sees a previous run's lines.
	SessionID string
}

// New builds the dialogue cache and, when redisClient is non-nil, a Redis
// journal for the current session.
func New(cfg Config, redisClient *redis.Client, logger *zap.Logger) (DialogueCache, Journal) {
	store := NewLoggingCache(NewMemoryCache(), logger)

	if redisClient == nil {
		return store, NopJournal{}
	}

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	return store, NewRedisJournal(redisClient, RedisConfig{
		Prefix:    cfg.RedisPrefix,
		SessionID: sessionID,
		TTL:       cfg.JournalTTL,
	})
}
