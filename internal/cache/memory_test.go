package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFingerprintNormalization(t *testing.T) {
	a := NewFingerprint("Shane", "", "Mon", "Leave me alone.")
	b := NewFingerprint(" Shane ", "  ", "Mon ", "Leave me alone.")
	assert.Equal(t, a, b)
	assert.Equal(t, InteractionKey, a.ContextKey)

	c := NewFingerprint("Shane", "", "Mon", "Go away.")
	assert.NotEqual(t, a, c, "different original text must give a different fingerprint")

	parsed, ok := ParseFingerprint(a.String())
	require.True(t, ok)
	assert.Equal(t, a, parsed)

	_, ok = ParseFingerprint("exact:a:b:c:d")
	assert.False(t, ok)
	assert.Len(t, a.ShortHash(), 12)
}

func TestParseFingerprintContextKeyWithColons(t *testing.T) {
	fp := NewFingerprint("Emily", "Resort_Chair:2", "Sun", "What a lovely day.")
	parsed, ok := ParseFingerprint(fp.String())
	require.True(t, ok)
	assert.Equal(t, fp, parsed)

	fp = NewFingerprint("Emily", "a:b:c", "Sun", "x")
	parsed, ok = ParseFingerprint(fp.String())
	require.True(t, ok)
	assert.Equal(t, "a:b:c", parsed.ContextKey)
	assert.Equal(t, "Sun", parsed.Day)
	assert.Equal(t, fp.TextHash, parsed.TextHash)

	_, ok = ParseFingerprint("dlg:Emily:Sun:hash")
	assert.False(t, ok)
}

func TestMemoryCachePutGet(t *testing.T) {
	c := NewMemoryCache()
	fp := NewFingerprint("Abigail", "Mon", "Mon", "Hi.")

	_, ok := c.TryGet(fp)
	assert.False(t, ok)

	c.Put(fp, "Hey! Want to explore the mines?")
	for i := 0; i < 3; i++ {
		got, ok := c.TryGet(fp)
		require.True(t, ok)
		assert.Equal(t, "Hey! Want to explore the mines?", got)
	}

	c.Put(fp, "second")
	got, _ := c.TryGet(fp)
	assert.Equal(t, "second", got)
	assert.Equal(t, 1, c.Len())
}

func TestTryBeginGenerationExclusive(t *testing.T) {
	c := NewMemoryCache()
	fp := NewFingerprint("Leah", "Married", "Tue", "text")

	require.True(t, c.TryBeginGeneration(fp))
	assert.False(t, c.TryBeginGeneration(fp))
	assert.True(t, c.InFlight(fp))

	c.EndGeneration(fp)
	assert.False(t, c.InFlight(fp))
	assert.True(t, c.TryBeginGeneration(fp))
}

func TestTryBeginGenerationConcurrent(t *testing.T) {
	c := NewMemoryCache()
	fp := NewFingerprint("Sam", "Dating", "Fri", "Yo.")

	const callers = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if c.TryBeginGeneration(fp) {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 1, c.InFlightCount())
}

func TestLoggingCacheDelegates(t *testing.T) {
	inner := NewMemoryCache()
	c := NewLoggingCache(inner, zaptest.NewLogger(t))
	fp := NewFingerprint("Gus", "", "Sat", "Welcome!")

	require.True(t, c.TryBeginGeneration(fp))
	assert.False(t, c.TryBeginGeneration(fp))
	c.Put(fp, "Come on in!")
	c.EndGeneration(fp)

	got, ok := c.TryGet(fp)
	require.True(t, ok)
	assert.Equal(t, "Come on in!", got)
	assert.False(t, inner.InFlight(fp))
}

func TestNewWithoutRedis(t *testing.T) {
	store, journal := New(Config{}, nil, zaptest.NewLogger(t))
	require.NotNil(t, store)

	_, err := journal.Lines(context.Background())
	assert.ErrorIs(t, err, ErrNoJournal)
	assert.NoError(t, journal.Record(context.Background(), Fingerprint{}, "x"))
}
