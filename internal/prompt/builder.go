// Package prompt builds the chat request used to rewrite a single line of
// scripted dialogue.
package prompt

import (
	"fmt"
	"strings"

	"dialoguegate/internal/llm"
)

const (
	// MaxTokens caps the reply; one or two sentences fit comfortably.
	MaxTokens = 100
	// Temperature gives variety between days without drifting off-character.
	Temperature = 0.8
)

// World is the game state embedded in every system message.
type World struct {
	Name       string // e.g. "Stardew Valley"
	Season     string
	DayOfMonth int
	Year       int
	Weather    string
	FarmerName string
}

// Input is everything one substitution prompt is built from.
type Input struct {
	Character     string
	Persona       string
	PlayerContext string
	Day           string
	DialogueKey   string
	OriginalText  string
	World         World
}

// Builder produces chat requests for a fixed model.
type Builder struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// NewBuilder returns a Builder with the default generation parameters.
func NewBuilder(model string) Builder {
	return Builder{Model: model, MaxTokens: MaxTokens, Temperature: Temperature}
}

// Build is pure: the same input always yields the same request.
func (b Builder) Build(in Input) *llm.ChatRequest {
	return &llm.ChatRequest{
		Model: b.Model,
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: systemMessage(in)},
			{Role: llm.RoleUser, Content: userMessage(in)},
		},
		MaxTokens:   b.MaxTokens,
		Temperature: b.Temperature,
	}
}

func systemMessage(in Input) string {
	var sb strings.Builder

	world := in.World.Name
	if world == "" {
		world = "Stardew Valley"
	}

	sb.WriteString(fmt.Sprintf("You are %s from %s. ", in.Character, world))
	sb.WriteString("Stay in character and speak the way they would.\n\n")
	sb.WriteString(fmt.Sprintf("Character Context: %s\n", in.Persona))
	if in.PlayerContext != "" {
		sb.WriteString(fmt.Sprintf("Player Context: %s\n", in.PlayerContext))
	}
	sb.WriteString(fmt.Sprintf("Current Day: %s\n", in.Day))
	if ws := worldState(in.World); ws != "" {
		sb.WriteString(fmt.Sprintf("World: %s\n", ws))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// worldState renders only the fields the host supplied.
func worldState(w World) string {
	var parts []string
	if w.Season != "" {
		date := w.Season
		if w.DayOfMonth > 0 {
			date = fmt.Sprintf("%s %d", date, w.DayOfMonth)
		}
		if w.Year > 0 {
			date = fmt.Sprintf("%s, year %d", date, w.Year)
		}
		parts = append(parts, "It's "+date+".")
	}
	if w.Weather != "" {
		parts = append(parts, fmt.Sprintf("Weather is %s.", w.Weather))
	}
	if w.FarmerName != "" {
		parts = append(parts, fmt.Sprintf("The farmer's name is %s.", w.FarmerName))
	}
	return strings.Join(parts, " ")
}

func userMessage(in Input) string {
	var sb strings.Builder

	sb.WriteString("Rewrite this line of dialogue for the current moment.\n\n")
	sb.WriteString(fmt.Sprintf("Dialogue Key: %s\n", in.DialogueKey))
	sb.WriteString(fmt.Sprintf("Original Dialogue: %s\n\n", in.OriginalText))
	sb.WriteString("Generate a response that:\n")
	sb.WriteString(fmt.Sprintf("- Stays true to %s's personality\n", in.Character))
	sb.WriteString("- Is appropriate for the day and context\n")
	sb.WriteString("- Sounds natural and conversational\n")
	sb.WriteString("- Is 1-2 sentences maximum\n")
	sb.WriteString("- Doesn't include any game mechanics or meta references\n\n")
	sb.WriteString("Response:")

	return sb.String()
}
