package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"

	"dialoguegate/internal/cache"
	"dialoguegate/internal/coordinator"
	"dialoguegate/internal/handlers"
	"dialoguegate/internal/host"
)

type staticSession struct {
	view host.View
}

func (s *staticSession) Show(_ context.Context, req coordinator.Request) coordinator.Result {
	s.view = host.View{Showing: true, Character: req.Character, OriginalText: req.OriginalText, Text: req.OriginalText, Version: s.view.Version + 1}
	return coordinator.Result{Outcome: coordinator.OutcomePassthrough, Text: req.OriginalText}
}

func (s *staticSession) Advance() { s.view = host.View{Version: s.view.Version + 1} }

func (s *staticSession) Current() host.View { return s.view }

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	SetupRouter(r, zaptest.NewLogger(t), handlers.NewDialogueHandler(&staticSession{}, cache.NopJournal{}), Options{
		RequestTimeout: time.Second,
		MaxBodyBytes:   1024,
	})
	return r
}

func TestRoutes(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodPost, "/v1/dialogue/show", `{"character":"Morris","original_text":"Hi.","day":"Mon"}`, http.StatusOK},
		{http.MethodGet, "/v1/dialogue/current", "", http.StatusOK},
		{http.MethodPost, "/v1/dialogue/advance", "", http.StatusNoContent},
		{http.MethodGet, "/v1/dialogue/lines", "", http.StatusNotFound},
		{http.MethodGet, "/v1/dialogue/show", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/v1/dialogue/show", `{"character":"` + strings.Repeat("x", 2048) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != tt.want {
			t.Fatalf("%s %s: expected %d, got %d (%s)", tt.method, tt.path, tt.want, rr.Code, rr.Body.String())
		}
	}
}
