package directory

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Filter returns the entries whose title contains query, ignoring case. An empty query
// returns all entries in their original order. The result never shares its backing array with entries.
func Filter(entries []Entry, query string) []Entry {
	if query == "" {
		return slices.Clone(entries)
	}
	q := strings.ToLower(query)
	return lo.Filter(entries, func(e Entry, _ int) bool {
		return strings.Contains(strings.ToLower(e.FeedTitle), q)
	})
}

// Matches reports whether e would be kept by Filter for query
func Matches(e Entry, query string) bool {
	return query == "" || strings.Contains(strings.ToLower(e.FeedTitle), strings.ToLower(query))
}
