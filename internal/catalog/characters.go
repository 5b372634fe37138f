// Package catalog holds the static character data the dialogue engine
// consults: the allow-list of substitutable characters, hand-authored
// fallback lines and default persona descriptions.
package catalog

// TargetCharacters is the allow-list of characters whose dialogue may be
// substituted. Anything else is passed through verbatim.
var TargetCharacters = map[string]struct{}{
	// Marriage candidates
	"Abigail": {}, "Alex": {}, "Emily": {}, "Harvey": {}, "Leah": {}, "Maru": {},
	"Penny": {}, "Sam": {}, "Sebastian": {}, "Shane": {}, "Elliott": {}, "Haley": {},
	// Other villagers
	"Robin": {}, "Pierre": {}, "Gus": {}, "Lewis": {}, "Marnie": {}, "Willy": {}, "Wizard": {},
	"Caroline": {}, "Clint": {}, "Demetrius": {}, "Evelyn": {}, "George": {}, "Jodi": {},
	"Kent": {}, "Linus": {}, "Pam": {}, "Sandy": {}, "Jas": {}, "Vincent": {}, "Dwarf": {}, "Krobus": {},
}

// IsTarget reports whether character is on the allow-list.
func IsTarget(character string) bool {
	_, ok := TargetCharacters[character]
	return ok
}

var dayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DayLabel maps a days-played counter to its weekday code.
func DayLabel(daysPlayed uint32) string {
	return dayNames[daysPlayed%7]
}
