package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// InteractionKey is the context key used when the host has no structured
// dialogue key.
const InteractionKey = "Interaction"

// Fingerprint identifies one substitutable line: this text, for this
// character, in this context, on this day.
type Fingerprint struct {
	Character  string
	ContextKey string
	Day        string
	TextHash   string // hex sha256 of the original text
}

// NewFingerprint normalizes its inputs and hashes originalText.
func NewFingerprint(character, contextKey, day, originalText string) Fingerprint {
	contextKey = strings.TrimSpace(contextKey)
	if contextKey == "" {
		contextKey = InteractionKey
	}

	sum := sha256.Sum256([]byte(originalText))

	return Fingerprint{
		Character:  strings.TrimSpace(character),
		ContextKey: contextKey,
		Day:        strings.TrimSpace(day),
		TextHash:   hex.EncodeToString(sum[:]),
	}
}

// String is the flat key used in logs and the journal.
func (f Fingerprint) String() string {
	// dlg:<CHARACTER>:<CONTEXT_KEY>:<DAY>:<HASH_HEX>
	return fmt.Sprintf("dlg:%s:%s:%s:%s", f.Character, f.ContextKey, f.Day, f.TextHash)
}

// ShortHash is the first 12 hex chars of TextHash, for log fields.
func (f Fingerprint) ShortHash() string {
	if len(f.TextHash) <= 12 {
		return f.TextHash
	}
	return f.TextHash[:12]
}

// ParseFingerprint is the inverse of String. Context keys may contain
// colons; character, day and hash may not.
func ParseFingerprint(key string) (Fingerprint, bool) {
	parts := strings.Split(key, ":")
	if len(parts) < 5 || parts[0] != "dlg" {
		return Fingerprint{}, false
	}
	n := len(parts)
	return Fingerprint{
		Character:  parts[1],
		ContextKey: strings.Join(parts[2:n-2], ":"),
		Day:        parts[n-2],
		TextHash:   parts[n-1],
	}, true
}
