package domain

import "strings"

// Category is a routing key into the closed set of per-category analysis logs.
type Category string

// Categories recognized by the image analysis pipeline.
const (
	CategorySteak   Category = "steak"
	CategoryVeggies Category = "veggies"
	CategoryMate    Category = "mate"
	CategoryGaucho  Category = "gaucho"
	CategoryFutbol  Category = "futbol"

	// CategoryEasterEggs is the catch-all destination. It receives records whose
	// judge output names no specific category or cannot be parsed at all.
	CategoryEasterEggs Category = "easter_eggs"
)

// CatchAll is the default routing destination.
const CatchAll = CategoryEasterEggs

// Categories returns every category in display order, catch-all last.
// Returns a fresh slice so callers may modify it.
func Categories() []Category {
	return []Category{
		CategorySteak,
		CategoryVeggies,
		CategoryMate,
		CategoryGaucho,
		CategoryFutbol,
		CategoryEasterEggs,
	}
}

// ParseCategory returns the category named by key. Matching is case-insensitive
// and accepts the hyphenated "easter-eggs" spelling used by the web frontend.
func ParseCategory(key string) (Category, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
	for _, c := range Categories() {
		if string(c) == normalized {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

// ResolveCategory is the lenient form of ParseCategory: unknown keys resolve to
// the catch-all category instead of failing.
func ResolveCategory(key string) Category {
	c, err := ParseCategory(key)
	if err != nil {
		return CatchAll
	}
	return c
}

// MatchCategory returns the category whose key equals key exactly, or the
// catch-all. Judge verdicts are routed with it.
func MatchCategory(key string) Category {
	for _, c := range Categories() {
		if string(c) == key {
			return c
		}
	}
	return CatchAll
}

// IsCatchAll reports whether c is the catch-all category.
func (c Category) IsCatchAll() bool { return c == CatchAll }

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }
