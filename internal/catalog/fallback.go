package catalog

import (
	"fmt"
	"strings"
)

// Category is the fallback line family a dialogue key belongs to.
type Category string

const (
	CategoryGift    Category = "gift"
	CategoryEvent   Category = "event"
	CategoryResort  Category = "resort"
	CategoryDefault Category = "default"
)

type categoryRule struct {
	category Category
	markers  []string
}

// Checked in order; the first rule with a matching marker wins.
var categoryRules = []categoryRule{
	{CategoryGift, []string{"Gift", "AcceptGift"}},
	{CategoryEvent, []string{"eventSeen", "Event"}},
	{CategoryResort, []string{"Resort"}},
}

// Classify returns the fallback category for a dialogue key or type.
func Classify(key string) Category {
	for _, rule := range categoryRules {
		for _, m := range rule.markers {
			if strings.Contains(key, m) {
				return rule.category
			}
		}
	}
	return CategoryDefault
}

// Fallback returns the deterministic hand-authored line for character and
// key on day. It never fails: unknown characters get the category's
// generic line.
func Fallback(character, key, day string) string {
	switch cat := Classify(key); cat {
	case CategoryDefault:
		tmpl, ok := dayLines[character]
		if !ok {
			tmpl = genericDayLine
		}
		return fmt.Sprintf(tmpl, day)
	default:
		lines := categoryLines[cat]
		if line, ok := lines.byCharacter[character]; ok {
			return line
		}
		return lines.generic
	}
}

// Catalog adapts the package-level tables to an injectable lookup.
type Catalog struct{}

func (Catalog) Lookup(character, key, day string) string {
	return Fallback(character, key, day)
}
