package schedule

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownCategory is returned by ParseCategory for unrecognized names.
var ErrUnknownCategory = errors.New("unknown waste category")

// categoryAliases maps folded names (lower case, no diacritics) to categories.
var categoryAliases = map[string]Category{
	"black":           Black,
	"restmull":        Black,
	"restmuell":       Black,
	"rest":            Black,
	"brown":           Brown,
	"biomull":         Brown,
	"biomuell":        Brown,
	"bio":             Brown,
	"biotonne":        Brown,
	"yellow":          Yellow,
	"kunststoffmull":  Yellow,
	"kunststoffmuell": Yellow,
	"kunstoffmull":    Yellow,
	"gelber sack":     Yellow,
	"gelber_sack":     Yellow,
	"wert":            Yellow,
	"wertstoff":       Yellow,
	"blue":            Blue,
	"papiermull":      Blue,
	"papiermuell":     Blue,
	"papier":          Blue,
	"papiertonne":     Blue,
}

// ParseCategory resolves a category tag or German display name.
// Matching ignores case and diacritics, so "Restmüll" and "RESTMULL" both
// resolve to Black.
func ParseCategory(s string) (Category, error) {
	if c, ok := categoryAliases[foldName(s)]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// ParseCategories parses a comma-separated list. Empty parts are ignored and
// a list without any names selects all categories.
func ParseCategories(list string) ([]Category, error) {
	if strings.TrimSpace(list) == "" {
		return Categories, nil
	}

	seen := make(map[Category]bool)
	var out []Category
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return Categories, nil
	}
	return out, nil
}

// foldName removes diacritics and lowercases
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	res, _, err := transform.String(t, s)
	if err != nil {
		res = s
	}
	return strings.ToLower(strings.TrimSpace(res))
}
