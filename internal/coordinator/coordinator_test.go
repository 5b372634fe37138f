package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"dialoguegate/internal/cache"
	"dialoguegate/internal/catalog"
	"dialoguegate/internal/llm"
	"dialoguegate/internal/prompt"
)

type fakeGenerator struct {
	configured bool
	text       string
	err        error
	panicWith  any
	release    chan struct{}

	calls atomic.Int32
	mu    sync.Mutex
	last  *llm.ChatRequest
}

func (g *fakeGenerator) Configured() bool { return g.configured }

func (g *fakeGenerator) Generate(ctx context.Context, req *llm.ChatRequest) (string, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.last = req
	g.mu.Unlock()

	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.panicWith != nil {
		panic(g.panicWith)
	}
	return g.text, g.err
}

type fakePresenter struct {
	cur     Presentation
	showing bool
	writes  int
}

func (p *fakePresenter) Current() (Presentation, bool) { return p.cur, p.showing }

func (p *fakePresenter) Replace(text string) {
	p.cur.Text = text
	p.writes++
}

func (p *fakePresenter) show(req Request, text string) {
	p.cur = Presentation{Character: req.Character, OriginalText: req.OriginalText, Text: text}
	p.showing = true
}

type fakeJournal struct {
	mu    sync.Mutex
	lines map[string]string
}

func (j *fakeJournal) Record(_ context.Context, fp cache.Fingerprint, text string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lines == nil {
		j.lines = map[string]string{}
	}
	j.lines[fp.String()] = text
	return nil
}

func (j *fakeJournal) Lines(context.Context) (map[string]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make(map[string]string, len(j.lines))
	for k, v := range j.lines {
		out[k] = v
	}
	return out, nil
}

type harness struct {
	coord     *Coordinator
	cache     *cache.MemoryCache
	gen       *fakeGenerator
	presenter *fakePresenter
	journal   *fakeJournal
}

func newHarness(t *testing.T, gen *fakeGenerator, opts Options) *harness {
	t.Helper()

	h := &harness{
		cache:     cache.NewMemoryCache(),
		gen:       gen,
		presenter: &fakePresenter{},
		journal:   &fakeJournal{},
	}
	h.coord = New(Deps{
		Cache:     h.cache,
		Journal:   h.journal,
		Generator: gen,
		Personas:  catalog.NewPersonas(nil),
		Builder:   prompt.NewBuilder("test-model"),
		Presenter: h.presenter,
		Logger:    zaptest.NewLogger(t),
	}, opts)
	t.Cleanup(h.coord.Close)
	return h
}

// show runs the foreground path the way the host does: ask, then display.
func (h *harness) show(req Request) Result {
	res := h.coord.OnDialogueAboutToShow(context.Background(), req)
	h.presenter.show(req, res.Text)
	return res
}

func abigailMonday() Request {
	return Request{
		Character:    "Abigail",
		ContextKey:   "Mon",
		OriginalText: "Oh, hey. I'm just heading out to the mines.",
		Day:          "Mon",
	}
}

func TestNonTargetCharacterPassesThrough(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "nope"}
	h := newHarness(t, gen, Options{})

	req := Request{Character: "Gunther", ContextKey: "Mon", OriginalText: "Welcome to the museum.", Day: "Mon"}
	res := h.coord.OnDialogueAboutToShow(context.Background(), req)

	assert.Equal(t, OutcomePassthrough, res.Outcome)
	assert.Equal(t, req.OriginalText, res.Text)

	h.coord.Wait()
	assert.Zero(t, gen.calls.Load())
	assert.Zero(t, h.cache.Len())
	assert.Zero(t, h.cache.InFlightCount())
}

func TestCachedLineServedSynchronously(t *testing.T) {
	gen := &fakeGenerator{configured: true}
	h := newHarness(t, gen, Options{})

	req := abigailMonday()
	fp := cache.NewFingerprint(req.Character, req.ContextKey, req.Day, req.OriginalText)
	h.cache.Put(fp, "Want to come with me to the mines?")

	res := h.coord.OnDialogueAboutToShow(context.Background(), req)
	assert.Equal(t, Result{Outcome: OutcomeCached, Text: "Want to come with me to the mines?"}, res)

	h.coord.Wait()
	assert.Zero(t, gen.calls.Load())
}

func TestUnconfiguredServesFallback(t *testing.T) {
	gen := &fakeGenerator{configured: false}
	h := newHarness(t, gen, Options{})

	req := abigailMonday()
	res := h.coord.OnDialogueAboutToShow(context.Background(), req)

	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.Equal(t, catalog.Fallback("Abigail", "Mon", "Mon"), res.Text)

	h.coord.Wait()
	assert.Zero(t, gen.calls.Load())
	assert.Zero(t, h.cache.InFlightCount())
	assert.Zero(t, h.cache.Len())
	assert.Zero(t, h.coord.Pending())
}

func TestGeneratedLineReplacesPlaceholder(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "Hey! The mines are calling my name today."}
	h := newHarness(t, gen, Options{PlayerContext: "A new farmer."})

	req := abigailMonday()
	res := h.show(req)
	assert.Equal(t, OutcomePending, res.Outcome)
	assert.Equal(t, catalog.Fallback("Abigail", "Mon", "Mon"), res.Text)

	h.coord.Wait()
	require.True(t, h.coord.OnTick())
	assert.Equal(t, gen.text, h.presenter.cur.Text)

	fp := cache.NewFingerprint(req.Character, req.ContextKey, req.Day, req.OriginalText)
	got, ok := h.cache.TryGet(fp)
	require.True(t, ok)
	assert.Equal(t, gen.text, got)
	assert.False(t, h.cache.InFlight(fp))

	lines, _ := h.journal.Lines(context.Background())
	assert.Equal(t, gen.text, lines[fp.String()])

	gen.mu.Lock()
	last := gen.last
	gen.mu.Unlock()
	require.NotNil(t, last)
	assert.Contains(t, last.Messages[0].Content, "A new farmer.")
	assert.Contains(t, last.Messages[1].Content, req.OriginalText)

	assert.False(t, h.coord.OnTick(), "queue should be drained")
}

func TestGenerationErrorCachesFallback(t *testing.T) {
	gen := &fakeGenerator{
		configured: true,
		err:        &llm.GenerationError{Kind: llm.ErrTransportFailure, Err: errors.New("connection refused")},
	}
	h := newHarness(t, gen, Options{Placeholder: "..."})

	req := Request{Character: "Shane", ContextKey: "AcceptGift_(O)346", OriginalText: "Oh. Thanks.", Day: "Fri"}
	res := h.show(req)
	require.Equal(t, Result{Outcome: OutcomePending, Text: "..."}, res)

	h.coord.Wait()
	require.True(t, h.coord.OnTick())
	assert.Equal(t, "Thanks... I appreciate it.", h.presenter.cur.Text)

	res = h.coord.OnDialogueAboutToShow(context.Background(), req)
	assert.Equal(t, Result{Outcome: OutcomeCached, Text: "Thanks... I appreciate it."}, res)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestConcurrentRequestsShareOneGeneration(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "Fresh line.", release: make(chan struct{})}
	h := newHarness(t, gen, Options{WaitBudget: time.Minute})

	req := abigailMonday()
	first := h.coord.OnDialogueAboutToShow(context.Background(), req)
	second := h.coord.OnDialogueAboutToShow(context.Background(), req)

	assert.Equal(t, OutcomePending, first.Outcome)
	assert.Equal(t, OutcomePending, second.Outcome)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, h.cache.InFlightCount())

	close(gen.release)
	h.coord.Wait()

	assert.Equal(t, int32(1), gen.calls.Load())

	third := h.coord.OnDialogueAboutToShow(context.Background(), req)
	assert.Equal(t, Result{Outcome: OutcomeCached, Text: "Fresh line."}, third)
	assert.Zero(t, h.cache.InFlightCount())
}

func TestTimeoutRevertsToOriginalAndStillCaches(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "Late but lovely.", release: make(chan struct{})}
	h := newHarness(t, gen, Options{WaitBudget: 20 * time.Millisecond})

	req := abigailMonday()
	fp := cache.NewFingerprint(req.Character, req.ContextKey, req.Day, req.OriginalText)
	h.show(req)

	require.Eventually(t, func() bool { return h.coord.Pending() == 1 }, time.Second, 5*time.Millisecond)
	require.True(t, h.coord.OnTick())
	assert.Equal(t, req.OriginalText, h.presenter.cur.Text)

	_, ok := h.cache.TryGet(fp)
	assert.False(t, ok)
	assert.True(t, h.cache.InFlight(fp), "slot held until the background call finishes")

	close(gen.release)
	h.coord.Wait()

	got, ok := h.cache.TryGet(fp)
	require.True(t, ok)
	assert.Equal(t, "Late but lovely.", got)
	assert.False(t, h.cache.InFlight(fp))

	// The box already shows the original again, so the late line is dropped.
	require.Equal(t, 1, h.coord.Pending())
	assert.False(t, h.coord.OnTick())
	assert.Equal(t, req.OriginalText, h.presenter.cur.Text)
}

func TestReopenedLineAfterTimeoutGetsLateResult(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "Worth the wait.", release: make(chan struct{})}
	h := newHarness(t, gen, Options{WaitBudget: 10 * time.Millisecond, Placeholder: "..."})

	req := abigailMonday()
	first := h.show(req)
	require.Equal(t, "...", first.Text)

	require.Eventually(t, func() bool { return h.coord.Pending() == 1 }, time.Second, 5*time.Millisecond)
	require.True(t, h.coord.OnTick())
	assert.Equal(t, req.OriginalText, h.presenter.cur.Text)

	// The player closes the box and talks to Abigail again before the
	// generation has finished.
	h.presenter.showing = false
	again := h.show(req)
	require.Equal(t, Result{Outcome: OutcomePending, Text: "..."}, again)

	close(gen.release)
	h.coord.Wait()

	require.True(t, h.coord.OnTick())
	assert.Equal(t, "Worth the wait.", h.presenter.cur.Text)
	assert.Zero(t, h.coord.Pending())
}

func TestReopenedLineAfterTimeoutGetsFallbackOnError(t *testing.T) {
	gen := &fakeGenerator{
		configured: true,
		err:        &llm.GenerationError{Kind: llm.ErrMalformedResponse},
		release:    make(chan struct{}),
	}
	h := newHarness(t, gen, Options{WaitBudget: 10 * time.Millisecond, Placeholder: "..."})

	req := Request{Character: "Shane", ContextKey: "Gift", OriginalText: "Oh.", Day: "Sat"}
	h.show(req)
	require.Eventually(t, func() bool { return h.coord.Pending() == 1 }, time.Second, 5*time.Millisecond)
	h.coord.OnTick()

	h.show(req)
	close(gen.release)
	h.coord.Wait()

	require.True(t, h.coord.OnTick())
	assert.Equal(t, "Thanks... I appreciate it.", h.presenter.cur.Text)
}

func TestCloseWaitsForGenerationsStartedConcurrently(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "Generated."}
	h := newHarness(t, gen, Options{})

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			h.coord.OnDialogueAboutToShow(context.Background(), Request{
				Character:    "Sam",
				ContextKey:   "Tue",
				OriginalText: fmt.Sprintf("line %d", i),
				Day:          "Tue",
			})
		}(i)
	}

	close(start)
	h.coord.Close()
	assert.Zero(t, h.cache.InFlightCount(), "Close returned with a generation still running")

	wg.Wait()
	assert.Zero(t, h.cache.InFlightCount())
}

func TestTimeoutThenErrorCachesFallback(t *testing.T) {
	gen := &fakeGenerator{
		configured: true,
		err:        &llm.GenerationError{Kind: llm.ErrRejectedByProvider, Status: 429},
		release:    make(chan struct{}),
	}
	h := newHarness(t, gen, Options{WaitBudget: 10 * time.Millisecond})

	req := Request{Character: "Shane", ContextKey: "Gift", OriginalText: "...", Day: "Sat"}
	h.show(req)

	require.Eventually(t, func() bool { return h.coord.Pending() == 1 }, time.Second, 5*time.Millisecond)
	close(gen.release)
	h.coord.Wait()

	fp := cache.NewFingerprint(req.Character, req.ContextKey, req.Day, req.OriginalText)
	got, ok := h.cache.TryGet(fp)
	require.True(t, ok)
	assert.Equal(t, "Thanks... I appreciate it.", got)
}

func TestLateResultDoesNotOverwriteAdvancedDialogue(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "Generated.", release: make(chan struct{})}
	h := newHarness(t, gen, Options{WaitBudget: time.Minute})

	req := abigailMonday()
	h.show(req)

	// The player advances before the generation lands.
	next := Request{Character: "Abigail", ContextKey: "Mon", OriginalText: "See you around.", Day: "Mon"}
	h.presenter.show(next, next.OriginalText)
	before := h.presenter.cur

	close(gen.release)
	h.coord.Wait()

	assert.False(t, h.coord.OnTick())
	assert.Equal(t, before, h.presenter.cur)
	assert.Zero(t, h.presenter.writes)
}

func TestUpdateDiscardedWhenBoxClosed(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "Generated."}
	h := newHarness(t, gen, Options{})

	h.show(abigailMonday())
	h.presenter.showing = false

	h.coord.Wait()
	assert.False(t, h.coord.OnTick())
	assert.Zero(t, h.presenter.writes)
}

func TestOnTickAppliesOneUpdatePerCall(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "Generated."}
	h := newHarness(t, gen, Options{})

	h.coord.OnDialogueAboutToShow(context.Background(), abigailMonday())
	h.coord.OnDialogueAboutToShow(context.Background(), Request{Character: "Sam", ContextKey: "Tue", OriginalText: "Yo.", Day: "Tue"})
	h.coord.Wait()

	require.Equal(t, 2, h.coord.Pending())
	h.coord.OnTick()
	assert.Equal(t, 1, h.coord.Pending())
	h.coord.OnTick()
	assert.Zero(t, h.coord.Pending())
}

func TestGeneratorPanicReleasesSlot(t *testing.T) {
	gen := &fakeGenerator{configured: true, panicWith: "boom"}
	h := newHarness(t, gen, Options{})

	req := abigailMonday()
	h.show(req)
	h.coord.Wait()

	fp := cache.NewFingerprint(req.Character, req.ContextKey, req.Day, req.OriginalText)
	got, ok := h.cache.TryGet(fp)
	require.True(t, ok)
	assert.Equal(t, catalog.Fallback("Abigail", "Mon", "Mon"), got)
	assert.False(t, h.cache.InFlight(fp))
}

func TestClosedCoordinatorStopsGenerating(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "Generated."}
	h := newHarness(t, gen, Options{})
	h.coord.Close()

	res := h.coord.OnDialogueAboutToShow(context.Background(), abigailMonday())
	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.Zero(t, gen.calls.Load())
}
