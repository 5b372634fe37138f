package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"dialoguegate/internal/cache"
	"dialoguegate/internal/catalog"
	"dialoguegate/internal/coordinator"
	"dialoguegate/internal/host"
	"dialoguegate/internal/prompt"
	"dialoguegate/pkg/logging/logging"
)

// Session is the foreground state the handlers drive.
type Session interface {
	Show(ctx context.Context, req coordinator.Request) coordinator.Result
	Advance()
	Current() host.View
}

// DialogueHandler holds dependencies for the /v1/dialogue endpoints.
type DialogueHandler struct {
	Session Session
	Journal cache.Journal
}

func NewDialogueHandler(session Session, journal cache.Journal) *DialogueHandler {
	if journal == nil {
		journal = cache.NopJournal{}
	}
	return &DialogueHandler{
		Session: session,
		Journal: journal,
	}
}

type worldPayload struct {
	Season     string `json:"season"`
	DayOfMonth int    `json:"day_of_month"`
	Year       int    `json:"year"`
	Weather    string `json:"weather"`
	FarmerName string `json:"farmer_name"`
}

// ShowRequest is sent by the game when a dialogue box is about to open.
type ShowRequest struct {
	Character    string       `json:"character"`
	ContextKey   string       `json:"context_key"`
	OriginalText string       `json:"original_text"`
	Day          string       `json:"day"`
	DaysPlayed   *uint32      `json:"days_played,omitempty"` // used when day is empty
	World        worldPayload `json:"world"`
}

type ShowResponse struct {
	Text    string `json:"text"`
	Outcome string `json:"outcome"`
}

func (r ShowRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Character) == "":
		return errors.New("character is required")
	case r.OriginalText == "":
		return errors.New("original_text is required")
	case strings.TrimSpace(r.Day) == "" && r.DaysPlayed == nil:
		return errors.New("day or days_played is required")
	}
	return nil
}

func (r ShowRequest) toRequest() coordinator.Request {
	day := strings.TrimSpace(r.Day)
	if day == "" {
		day = catalog.DayLabel(*r.DaysPlayed)
	}
	return coordinator.Request{
		Character:    strings.TrimSpace(r.Character),
		ContextKey:   r.ContextKey,
		OriginalText: r.OriginalText,
		Day:          day,
		World: prompt.World{
			Season:     r.World.Season,
			DayOfMonth: r.World.DayOfMonth,
			Year:       r.World.Year,
			Weather:    r.World.Weather,
			FarmerName: r.World.FarmerName,
		},
	}
}

// Show handles POST /v1/dialogue/show.
func (h *DialogueHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	var body ShowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := body.validate(); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := h.Session.Show(ctx, body.toRequest())

	logger.Info("dialogue_show",
		zap.String("character", body.Character),
		zap.String("context_key", body.ContextKey),
		zap.String("outcome", string(res.Outcome)),
		zap.Duration("total_latency_ms", time.Since(start)),
	)

	writeJSON(w, http.StatusOK, ShowResponse{Text: res.Text, Outcome: string(res.Outcome)})
}

// Advance handles POST /v1/dialogue/advance.
func (h *DialogueHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.Session.Advance()
	w.WriteHeader(http.StatusNoContent)
}

// Current handles GET /v1/dialogue/current.
func (h *DialogueHandler) Current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Session.Current())
}

// Lines handles GET /v1/dialogue/lines.
func (h *DialogueHandler) Lines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lines, err := h.Journal.Lines(ctx)
	switch {
	case errors.Is(err, cache.ErrNoJournal):
		writeError(w, http.StatusNotFound, "journal disabled")
		return
	case err != nil:
		logging.L(ctx).Warn("journal_read_error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "journal unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lines":        lines,
		"by_character": groupLines(lines),
	})
}

// JournalLine is one journaled line, keyed back out of its fingerprint.
type JournalLine struct {
	ContextKey string `json:"context_key"`
	Day        string `json:"day"`
	Hash       string `json:"hash"`
	Text       string `json:"text"`
}

// groupLines files journal entries under their character, ordered by
// context key then day. Keys that are not fingerprints are skipped.
func groupLines(lines map[string]string) map[string][]JournalLine {
	out := make(map[string][]JournalLine)
	for key, text := range lines {
		fp, ok := cache.ParseFingerprint(key)
		if !ok {
			continue
		}
		out[fp.Character] = append(out[fp.Character], JournalLine{
			ContextKey: fp.ContextKey,
			Day:        fp.Day,
			Hash:       fp.ShortHash(),
			Text:       text,
		})
	}
	for _, group := range out {
		sort.Slice(group, func(i, j int) bool {
			if group[i].ContextKey != group[j].ContextKey {
				return group[i].ContextKey < group[j].ContextKey
			}
			if group[i].Day != group[j].Day {
				return group[i].Day < group[j].Day
			}
			return group[i].Hash < group[j].Hash
		})
	}
	return out
}

// writeJSON is a small helper to send JSON responses consistently.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
