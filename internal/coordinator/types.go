package coordinator

import (
	"context"
	"errors"

	"dialoguegate/internal/llm"
	"dialoguegate/internal/prompt"
)

// ErrTimeout is logged when a generation outlives the wait budget. It never
// reaches the caller of OnDialogueAboutToShow.
var ErrTimeout = errors.New("coordinator: generation exceeded wait budget")

// Outcome tags a synchronous substitution result.
type Outcome string

const (
	// OutcomePassthrough: character not in the allow-list, original text returned.
	OutcomePassthrough Outcome = "passthrough"
	OutcomeCached      Outcome = "cached"
	// OutcomePending: a placeholder is shown and may be replaced on a later tick.
	OutcomePending  Outcome = "pending"
	OutcomeFallback Outcome = "fallback"
)

// Request is one line about to be shown.
type Request struct {
	Character    string
	ContextKey   string
	OriginalText string
	Day          string
	World        prompt.World
}

// Result is what to show right now.
type Result struct {
	Outcome Outcome
	Text    string
}

// Presentation is the live dialogue box as the foreground sees it.
type Presentation struct {
	Character    string
	OriginalText string
	Text         string
}

// Presenter is the live presentation state. It is only touched from OnTick.
type Presenter interface {
	Current() (Presentation, bool)
	Replace(text string)
}

// Generator produces generated text for a built request.
type Generator interface {
	Configured() bool
	Generate(ctx context.Context, req *llm.ChatRequest) (string, error)
}

// FallbackSource returns a deterministic scripted line.
type FallbackSource interface {
	Lookup(character, contextKey, day string) string
}

type updateKind int

const (
	applyGenerated updateKind = iota
	applyFallback
	revertOriginal
)

func (k updateKind) String() string {
	switch k {
	case applyGenerated:
		return "generated"
	case applyFallback:
		return "fallback"
	case revertOriginal:
		return "original"
	default:
		return "unknown"
	}
}

// update is a pending change to the presentation, produced by a background
// generation and applied by OnTick.
type update struct {
	kind         updateKind
	character    string
	originalText string
	placeholder  string
	text         string
}
