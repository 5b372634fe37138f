// Package coordinator decides, for each line a target character is about
// to say, whether to serve cached text, a scripted fallback, or a
// placeholder that a background generation later replaces.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"dialoguegate/internal/cache"
	"dialoguegate/internal/catalog"
	"dialoguegate/internal/llm"
	"dialoguegate/internal/metrics"
	"dialoguegate/internal/prompt"
	"dialoguegate/pkg/logging/logging"
)

const (
	DefaultWaitBudget = 6 * time.Second
	journalTimeout    = 2 * time.Second
)

// Options tunes a Coordinator. Zero values select defaults.
type Options struct {
	// WaitBudget is how long a generation may run before the original
	// text is put back on screen.
	WaitBudget time.Duration
	// Placeholder is shown while generating. Empty means the fallback line.
	Placeholder string
	// PlayerContext is the free-text player description put in every prompt.
	PlayerContext string
	// WorldName fills prompt.World.Name when the request leaves it empty.
	WorldName string
}

// Deps are the collaborators a Coordinator is built from. Journal,
// Personas, Fallback and Logger may be nil.
type Deps struct {
	Cache     cache.DialogueCache
	Journal   cache.Journal
	Generator Generator
	Fallback  FallbackSource
	Personas  *catalog.Personas
	Builder   prompt.Builder
	Presenter Presenter
	Logger    *zap.Logger
}

// Coordinator is the substitution engine. Construct one per process (or per
// test) and share it by pointer.
type Coordinator struct {
	cache     cache.DialogueCache
	journal   cache.Journal
	gen       Generator
	fallback  FallbackSource
	personas  *catalog.Personas
	builder   prompt.Builder
	presenter Presenter
	opts      Options
	logger    *zap.Logger

	mu     sync.Mutex
	queue  []update
	closed bool

	wg conc.WaitGroup
}

func New(deps Deps, opts Options) *Coordinator {
	if opts.WaitBudget <= 0 {
		opts.WaitBudget = DefaultWaitBudget
	}
	if deps.Journal == nil {
		deps.Journal = cache.NopJournal{}
	}
	if deps.Fallback == nil {
		deps.Fallback = catalog.Catalog{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Coordinator{
		cache:     deps.Cache,
		journal:   deps.Journal,
		gen:       deps.Generator,
		fallback:  deps.Fallback,
		personas:  deps.Personas,
		builder:   deps.Builder,
		presenter: deps.Presenter,
		opts:      opts,
		logger:    deps.Logger.Named("coordinator"),
	}
}

// job is everything a background generation needs, captured at request time.
type job struct {
	fp          cache.Fingerprint
	req         Request
	chat        *llm.ChatRequest
	fallback    string
	placeholder string
}

// OnDialogueAboutToShow returns the text to show now. It never blocks on
// the network and never fails.
func (c *Coordinator) OnDialogueAboutToShow(ctx context.Context, req Request) Result {
	logger := c.requestLogger(ctx, req)

	if !catalog.IsTarget(req.Character) {
		return c.decide(logger, Result{Outcome: OutcomePassthrough, Text: req.OriginalText})
	}

	fp := cache.NewFingerprint(req.Character, req.ContextKey, req.Day, req.OriginalText)
	logger = logger.With(zap.String("fingerprint", fp.String()))

	if text, ok := c.cache.TryGet(fp); ok {
		return c.decide(logger, Result{Outcome: OutcomeCached, Text: text})
	}

	fallback := c.fallback.Lookup(fp.Character, fp.ContextKey, fp.Day)

	if c.gen == nil || !c.gen.Configured() {
		return c.decide(logger, Result{Outcome: OutcomeFallback, Text: fallback})
	}

	placeholder := c.opts.Placeholder
	if placeholder == "" {
		placeholder = fallback
	}

	// Held until wg.Go so Close cannot start waiting between the check
	// and the Add.
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return c.decide(logger, Result{Outcome: OutcomeFallback, Text: fallback})
	}

	if !c.cache.TryBeginGeneration(fp) {
		c.mu.Unlock()
		logger.Debug("generation_already_inflight")
		return c.decide(logger, Result{Outcome: OutcomePending, Text: placeholder})
	}

	j := job{
		fp:          fp,
		req:         req,
		chat:        c.builder.Build(c.promptInput(fp, req)),
		fallback:    fallback,
		placeholder: placeholder,
	}

	// The request context ends with the host call; the generation must not.
	bg := logging.WithLogger(context.WithoutCancel(ctx), logger)
	c.wg.Go(func() { c.generate(bg, j) })
	c.mu.Unlock()

	return c.decide(logger, Result{Outcome: OutcomePending, Text: placeholder})
}

// OnTick applies at most one queued update and reports whether the
// presentation changed. Call it from the foreground turn only.
func (c *Coordinator) OnTick() bool {
	u, ok := c.pop()
	if !ok {
		return false
	}

	logger := c.logger.With(
		zap.String("character", u.character),
		zap.Stringer("update", u.kind),
	)

	if c.presenter == nil {
		logger.Debug("update_discarded", zap.String("reason", "no_presenter"))
		return false
	}

	cur, showing := c.presenter.Current()
	if !showing ||
		cur.Character != u.character ||
		cur.OriginalText != u.originalText ||
		cur.Text != u.placeholder {
		logger.Debug("update_discarded", zap.String("reason", "presentation_changed"))
		return false
	}

	c.presenter.Replace(u.text)
	logger.Debug("update_applied")
	return true
}

// Pending returns the number of queued presentation updates.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Wait blocks until every background generation has committed.
func (c *Coordinator) Wait() {
	if r := c.wg.WaitAndRecover(); r != nil {
		c.logger.Error("background generation panicked", zap.String("panic", r.String()))
	}
}

// Close stops new generations from starting and waits for running ones.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.Wait()
}

type generation struct {
	text string
	err  error
}

func (c *Coordinator) generate(ctx context.Context, j job) {
	defer c.cache.EndGeneration(j.fp)

	logger := logging.L(ctx)
	start := time.Now()

	done := make(chan generation, 1)
	go func() {
		var pc panics.Catcher
		var g generation
		pc.Try(func() { g.text, g.err = c.gen.Generate(ctx, j.chat) })
		if r := pc.Recovered(); r != nil {
			g.err = fmt.Errorf("generator panicked: %w", r.AsError())
		}
		done <- g
	}()

	timer := time.NewTimer(c.opts.WaitBudget)
	defer timer.Stop()

	select {
	case g := <-done:
		text, kind := c.commit(ctx, j, g, false, time.Since(start))
		c.push(update{
			kind:         kind,
			character:    j.req.Character,
			originalText: j.req.OriginalText,
			placeholder:  j.placeholder,
			text:         text,
		})

	case <-timer.C:
		logger.Info("generation_over_budget",
			zap.Error(ErrTimeout),
			zap.Duration("wait_budget", c.opts.WaitBudget),
		)
		c.push(update{
			kind:         revertOriginal,
			character:    j.req.Character,
			originalText: j.req.OriginalText,
			placeholder:  j.placeholder,
			text:         j.req.OriginalText,
		})

		// The reverted box no longer shows the placeholder, so this only
		// lands on a box reopened on the same line while we were running.
		g := <-done
		text, kind := c.commit(ctx, j, g, true, time.Since(start))
		c.push(update{
			kind:         kind,
			character:    j.req.Character,
			originalText: j.req.OriginalText,
			placeholder:  j.placeholder,
			text:         text,
		})
	}
}

// commit caches the generated text, or the fallback line on error, and
// journals it. It returns the committed text and the matching update kind.
func (c *Coordinator) commit(ctx context.Context, j job, g generation, late bool, elapsed time.Duration) (string, updateKind) {
	logger := logging.L(ctx)

	text, kind := g.text, applyGenerated
	if g.err != nil {
		text, kind = j.fallback, applyFallback
	}

	c.cache.Put(j.fp, text)

	result := llm.KindLabel(g.err)
	if late {
		result = "late_" + result
	}
	metrics.GenerationsTotal.WithLabelValues(result).Inc()
	metrics.GenerationSeconds.Observe(elapsed.Seconds())

	fields := []zap.Field{
		zap.String("result", result),
		zap.Bool("late", late),
		zap.Int64("latency_ms", elapsed.Milliseconds()),
	}
	if g.err != nil {
		logger.Warn("generation_failed", append(fields, zap.Error(g.err))...)
	} else {
		logger.Info("generation_finished", fields...)
	}

	jctx, cancel := context.WithTimeout(ctx, journalTimeout)
	defer cancel()
	if err := c.journal.Record(jctx, j.fp, text); err != nil {
		logger.Warn("journal_record_failed", zap.Error(err))
	}

	return text, kind
}

func (c *Coordinator) push(u update) {
	c.mu.Lock()
	c.queue = append(c.queue, u)
	c.mu.Unlock()
}

func (c *Coordinator) pop() (update, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return update{}, false
	}
	u := c.queue[0]
	c.queue[0] = update{}
	c.queue = c.queue[1:]
	return u, true
}

func (c *Coordinator) promptInput(fp cache.Fingerprint, req Request) prompt.Input {
	world := req.World
	if world.Name == "" {
		world.Name = c.opts.WorldName
	}
	return prompt.Input{
		Character:     fp.Character,
		Persona:       c.personas.For(fp.Character),
		PlayerContext: c.opts.PlayerContext,
		Day:           fp.Day,
		DialogueKey:   fp.ContextKey,
		OriginalText:  req.OriginalText,
		World:         world,
	}
}

func (c *Coordinator) requestLogger(ctx context.Context, req Request) *zap.Logger {
	logger := c.logger
	if l, ok := logging.Lookup(ctx); ok {
		logger = l.Named("coordinator")
	}
	return logger.With(
		zap.String("character", req.Character),
		zap.String("context_key", req.ContextKey),
		zap.String("day", req.Day),
	)
}

func (c *Coordinator) decide(logger *zap.Logger, res Result) Result {
	metrics.SubstitutionsTotal.WithLabelValues(string(res.Outcome)).Inc()
	logger.Debug("substitution_decision", zap.String("outcome", string(res.Outcome)))
	return res
}
