// Package host holds the sidecar's view of the game's dialogue box and the
// foreground loop that applies background results to it.
package host

import "dialoguegate/internal/coordinator"

// Screen is the dialogue box as last reported by the game. It is not safe
// for concurrent use; Session serializes access.
type Screen struct {
	cur     coordinator.Presentation
	showing bool
	version uint64
}

func NewScreen() *Screen {
	return &Screen{}
}

// Show records a newly opened dialogue box.
func (s *Screen) Show(character, originalText, text string) {
	s.cur = coordinator.Presentation{
		Character:    character,
		OriginalText: originalText,
		Text:         text,
	}
	s.showing = true
	s.version++
}

// Clear records that the box was closed or advanced past.
func (s *Screen) Clear() {
	if !s.showing {
		return
	}
	s.cur = coordinator.Presentation{}
	s.showing = false
	s.version++
}

func (s *Screen) Current() (coordinator.Presentation, bool) {
	return s.cur, s.showing
}

func (s *Screen) Replace(text string) {
	if !s.showing {
		return
	}
	s.cur.Text = text
	s.version++
}

// Version increases every time the visible text changes, so pollers can
// tell a replacement from a repeat.
func (s *Screen) Version() uint64 {
	return s.version
}

var _ coordinator.Presenter = (*Screen)(nil)
