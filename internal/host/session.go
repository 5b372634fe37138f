package host

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"dialoguegate/internal/coordinator"
)

const DefaultTickInterval = 100 * time.Millisecond

// View is a snapshot of the dialogue box.
type View struct {
	Showing      bool   `json:"showing"`
	Character    string `json:"character,omitempty"`
	OriginalText string `json:"original_text,omitempty"`
	Text         string `json:"text,omitempty"`
	Version      uint64 `json:"version"`
}

// Session is the foreground turn: every read or write of the Screen, and
// every OnTick, happens under its lock.
type Session struct {
	mu       sync.Mutex
	screen   *Screen
	coord    *coordinator.Coordinator
	interval time.Duration
	logger   *zap.Logger
}

// NewSession wires screen, which must be the coordinator's Presenter, to coord.
func NewSession(screen *Screen, coord *coordinator.Coordinator, interval time.Duration, logger *zap.Logger) *Session {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		screen:   screen,
		coord:    coord,
		interval: interval,
		logger:   logger.Named("session"),
	}
}

// Show asks the coordinator what to display for req and puts it on screen.
func (s *Session) Show(ctx context.Context, req coordinator.Request) coordinator.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.coord.OnDialogueAboutToShow(ctx, req)
	s.screen.Show(req.Character, req.OriginalText, res.Text)
	return res
}

// Advance clears the dialogue box.
func (s *Session) Advance() {
	s.mu.Lock()
	s.screen.Clear()
	s.mu.Unlock()
}

func (s *Session) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, showing := s.screen.Current()
	return View{
		Showing:      showing,
		Character:    cur.Character,
		OriginalText: cur.OriginalText,
		Text:         cur.Text,
		Version:      s.screen.Version(),
	}
}

// Tick applies at most one pending update.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coord.OnTick()
}

// Run ticks until ctx is done.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("tick loop started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tick loop stopped")
			return
		case <-ticker.C:
			if s.Tick() {
				s.logger.Debug("presentation updated")
			}
		}
	}
}
