package stellar

import (
	"unicode/utf8"

	"settlex/config"
)

// BuildMemo joins the app prefix and a free-form context string into a
// text memo, trimmed to the protocol's byte limit.
func BuildMemo(context string) string {
	raw := config.MemoPrefix
	if context != "" {
		raw = config.MemoPrefix + "|" + context
	}
	return TrimMemoBytes(raw, config.MemoMaxBytes)
}

// TrimMemoBytes shortens s to at most maxBytes of UTF-8 without splitting a
// multi-byte character.
func TrimMemoBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	trimmed := s[:maxBytes]
	// Back off until the cut lands on a rune boundary.
	for len(trimmed) > 0 && !utf8.ValidString(trimmed) {
		trimmed = trimmed[:len(trimmed)-1]
	}
	return trimmed
}
