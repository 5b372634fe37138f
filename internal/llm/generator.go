package llm

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Generator turns a built chat request into a single line of text.
type Generator struct {
	client  Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewGenerator wraps client. A nil client yields a generator that reports
// itself unconfigured. timeout bounds each Generate call independently of
// any deadline the caller imposes.
func NewGenerator(client Client, timeout time.Duration, logger *zap.Logger) *Generator {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, timeout: timeout, logger: logger.Named("generator")}
}

// Configured reports whether a credentialed client is available.
func (g *Generator) Configured() bool {
	return g != nil && g.client != nil
}

// Generate performs one attempt and returns the first choice's trimmed
// content. Errors are *GenerationError.
func (g *Generator) Generate(ctx context.Context, req *ChatRequest) (string, error) {
	if !g.Configured() {
		return "", &GenerationError{Kind: ErrNotConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.ChatCompletion(ctx, req)
	if err != nil {
		if Kind(err) == nil {
			// Validation and marshalling failures never reached the wire.
			return "", malformedError("%w", err)
		}
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", malformedError("provider returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", malformedError("empty completion")
	}

	g.logger.Debug("generated text", zap.String("text", text))
	return text, nil
}
