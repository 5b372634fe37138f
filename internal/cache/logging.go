package cache

import (
	"go.uber.org/zap"

	"dialoguegate/internal/metrics"
)

// LoggingCache wraps a DialogueCache with logging + metrics.
type LoggingCache struct {
	inner  DialogueCache
	logger *zap.Logger
}

// NewLoggingCache returns a cache that logs and records metrics.
func NewLoggingCache(inner DialogueCache, logger *zap.Logger) *LoggingCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingCache{inner: inner, logger: logger.Named("dialogue_cache")}
}

func (c *LoggingCache) TryGet(fp Fingerprint) (string, bool) {
	text, ok := c.inner.TryGet(fp)

	result := "miss"
	if ok {
		result = "hit"
		metrics.CacheHitsTotal.Inc()
	}

	c.logger.Debug("dialogue_cache_get", append(fpFields(fp), zap.String("cache_result", result))...)
	return text, ok
}

func (c *LoggingCache) Put(fp Fingerprint, text string) {
	c.inner.Put(fp, text)
	c.logger.Debug("dialogue_cache_put", append(fpFields(fp), zap.Int("text_len", len(text)))...)
}

func (c *LoggingCache) TryBeginGeneration(fp Fingerprint) bool {
	ok := c.inner.TryBeginGeneration(fp)
	if ok {
		metrics.InFlight.Inc()
	}
	c.logger.Debug("dialogue_generation_begin", append(fpFields(fp), zap.Bool("claimed", ok))...)
	return ok
}

func (c *LoggingCache) EndGeneration(fp Fingerprint) {
	c.inner.EndGeneration(fp)
	metrics.InFlight.Dec()
	c.logger.Debug("dialogue_generation_end", fpFields(fp)...)
}

func fpFields(fp Fingerprint) []zap.Field {
	return []zap.Field{
		zap.String("character", fp.Character),
		zap.String("context_key", fp.ContextKey),
		zap.String("day", fp.Day),
		zap.String("hash", fp.ShortHash()),
	}
}

var _ DialogueCache = (*LoggingCache)(nil)
var _ DialogueCache = (*MemoryCache)(nil)
