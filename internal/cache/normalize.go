package cache

import "strings"

// Normalize canonicalizes text into a comparison key: trimmed,
// lowercased, with internal whitespace runs collapsed to single spaces.
// Empty or whitespace-only input normalizes to the empty key, which must
// never be used to look up or store an entry.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
