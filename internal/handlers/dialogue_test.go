package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"dialoguegate/internal/cache"
	"dialoguegate/internal/catalog"
	"dialoguegate/internal/coordinator"
	"dialoguegate/internal/host"
	"dialoguegate/internal/llm"
	"dialoguegate/internal/prompt"
)

type mockLLMClient struct {
	resp        *llm.ChatResponse
	err         error
	calls       int
	lastRequest *llm.ChatRequest
}

func (m *mockLLMClient) ChatCompletion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.calls++
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type memJournal struct {
	lines map[string]string
}

func (j *memJournal) Record(_ context.Context, fp cache.Fingerprint, text string) error {
	j.lines[fp.String()] = text
	return nil
}

func (j *memJournal) Lines(context.Context) (map[string]string, error) {
	return j.lines, nil
}

func newTestHandler(t *testing.T, client llm.Client, journal cache.Journal) (*DialogueHandler, *host.Session, *coordinator.Coordinator) {
	t.Helper()

	logger := zaptest.NewLogger(t)
	gen := llm.NewGenerator(client, time.Second, logger)

	screen := host.NewScreen()
	coord := coordinator.New(coordinator.Deps{
		Cache:     cache.NewMemoryCache(),
		Journal:   journal,
		Generator: gen,
		Personas:  catalog.NewPersonas(nil),
		Builder:   prompt.NewBuilder("gpt-test"),
		Presenter: screen,
		Logger:    logger,
	}, coordinator.Options{WaitBudget: time.Second})
	t.Cleanup(coord.Close)

	session := host.NewSession(screen, coord, time.Hour, logger)
	return NewDialogueHandler(session, journal), session, coord
}

func doShow(t *testing.T, h *DialogueHandler, body any) (*httptest.ResponseRecorder, ShowResponse) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/dialogue/show", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Show(rr, req)

	var resp ShowResponse
	if rr.Code == http.StatusOK {
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rr, resp
}

func TestShowUnconfiguredReturnsFallback(t *testing.T) {
	h, _, _ := newTestHandler(t, nil, nil)

	rr, resp := doShow(t, h, ShowRequest{
		Character:    "Abigail",
		ContextKey:   "Mon",
		OriginalText: "Hey.",
		Day:          "Mon",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp.Outcome != string(coordinator.OutcomeFallback) {
		t.Fatalf("expected fallback outcome, got %q", resp.Outcome)
	}
	if want := catalog.Fallback("Abigail", "Mon", "Mon"); resp.Text != want {
		t.Fatalf("expected %q, got %q", want, resp.Text)
	}
}

func TestShowThenCurrentPicksUpGeneratedText(t *testing.T) {
	fakeLLM := &mockLLMClient{
		resp: &llm.ChatResponse{
			Choices: []llm.ChatChoice{
				{Index: 0, Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: "  Morning! Off to the mines?  "}},
			},
		},
	}
	journal := &memJournal{lines: map[string]string{}}
	h, session, coord := newTestHandler(t, fakeLLM, journal)

	days := uint32(8)
	rr, resp := doShow(t, h, ShowRequest{
		Character:    "Abigail",
		ContextKey:   "Mon",
		OriginalText: "Hey.",
		DaysPlayed:   &days,
		World:        worldPayload{Season: "spring", DayOfMonth: 8, Year: 1, Weather: "sunny", FarmerName: "Robin"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if resp.Outcome != string(coordinator.OutcomePending) {
		t.Fatalf("expected pending outcome, got %q", resp.Outcome)
	}

	coord.Wait()
	if !session.Tick() {
		t.Fatalf("expected tick to apply the generated line")
	}

	cur := httptest.NewRecorder()
	h.Current(cur, httptest.NewRequest(http.MethodGet, "/v1/dialogue/current", nil))

	var view host.View
	if err := json.Unmarshal(cur.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode current: %v", err)
	}
	if view.Text != "Morning! Off to the mines?" {
		t.Fatalf("unexpected current text %q", view.Text)
	}

	if fakeLLM.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", fakeLLM.calls)
	}
	system := fakeLLM.lastRequest.Messages[0].Content
	if !strings.Contains(system, "sunny") || !strings.Contains(system, "Current Day: Mon") {
		t.Fatalf("system message missing world state: %q", system)
	}

	lines := httptest.NewRecorder()
	h.Lines(lines, httptest.NewRequest(http.MethodGet, "/v1/dialogue/lines", nil))
	if lines.Code != http.StatusOK {
		t.Fatalf("expected 200 from lines, got %d", lines.Code)
	}
	if !strings.Contains(lines.Body.String(), "Morning! Off to the mines?") {
		t.Fatalf("journal missing generated line: %s", lines.Body.String())
	}
}

func TestShowValidation(t *testing.T) {
	h, _, _ := newTestHandler(t, nil, nil)

	cases := map[string]any{
		"no character": ShowRequest{OriginalText: "x", Day: "Mon"},
		"no text":      ShowRequest{Character: "Leah", Day: "Mon"},
		"no day":       ShowRequest{Character: "Leah", OriginalText: "x"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr, _ := doShow(t, h, body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/dialogue/show", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	h.Show(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad JSON, got %d", rr.Code)
	}
}

func TestAdvanceClearsScreen(t *testing.T) {
	h, session, _ := newTestHandler(t, nil, nil)

	doShow(t, h, ShowRequest{Character: "Gus", OriginalText: "Welcome!", Day: "Fri"})
	if !session.Current().Showing {
		t.Fatalf("expected dialogue to be showing")
	}

	rr := httptest.NewRecorder()
	h.Advance(rr, httptest.NewRequest(http.MethodPost, "/v1/dialogue/advance", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if session.Current().Showing {
		t.Fatalf("expected dialogue to be cleared")
	}
}

func TestLinesWithoutJournal(t *testing.T) {
	h, _, _ := newTestHandler(t, nil, nil)

	rr := httptest.NewRecorder()
	h.Lines(rr, httptest.NewRequest(http.MethodGet, "/v1/dialogue/lines", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestLinesGroupedByCharacter(t *testing.T) {
	gift := cache.NewFingerprint("Shane", "AcceptGift_(O):346", "Fri", "Oh. Thanks.")
	mon := cache.NewFingerprint("Abigail", "Mon", "Mon", "Hey.")
	tue := cache.NewFingerprint("Abigail", "Tue", "Tue", "Hi again.")
	journal := &memJournal{lines: map[string]string{
		gift.String(): "Thanks... I appreciate it.",
		tue.String():  "Back again?",
		mon.String():  "Morning!",
		"stray":       "not a fingerprint",
	}}
	h, _, _ := newTestHandler(t, nil, journal)

	rr := httptest.NewRecorder()
	h.Lines(rr, httptest.NewRequest(http.MethodGet, "/v1/dialogue/lines", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		Lines       map[string]string        `json:"lines"`
		ByCharacter map[string][]JournalLine `json:"by_character"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode lines: %v", err)
	}

	if len(body.Lines) != 4 {
		t.Fatalf("expected raw lines untouched, got %d", len(body.Lines))
	}
	if len(body.ByCharacter) != 2 {
		t.Fatalf("expected 2 characters, got %v", body.ByCharacter)
	}

	abigail := body.ByCharacter["Abigail"]
	if len(abigail) != 2 || abigail[0].ContextKey != "Mon" || abigail[1].ContextKey != "Tue" {
		t.Fatalf("unexpected Abigail lines: %+v", abigail)
	}
	if abigail[0].Text != "Morning!" || abigail[0].Hash != mon.ShortHash() {
		t.Fatalf("unexpected Abigail Monday line: %+v", abigail[0])
	}

	shane := body.ByCharacter["Shane"]
	if len(shane) != 1 || shane[0].ContextKey != "AcceptGift_(O):346" || shane[0].Day != "Fri" {
		t.Fatalf("colon in context key not preserved: %+v", shane)
	}
}
