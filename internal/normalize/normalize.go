// Package normalize cleans free-text fields from carrier scan files before
// they are used as grouping or comparison keys.
package normalize

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// Clean strips every character that is not an ASCII letter, digit, or
// whitespace, trims the result, and word-capitalizes each whitespace-delimited
// token (first character uppercase, rest lowercase). Clean is idempotent.
func Clean(s string) string {
	s = nonAlnum.ReplaceAllString(s, "")
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize uppercases the first byte of a token and lowercases the rest.
// Tokens are ASCII after Clean's character strip.
func capitalize(w string) string {
	w = strings.ToLower(w)
	return strings.ToUpper(w[:1]) + w[1:]
}

// FullAddress builds the canonical stop identity for an event: each component
// cleaned individually, then joined with ", ". Empty components are kept so
// that addresses differing only in a missing line stay distinct.
func FullAddress(parts ...string) string {
	cleaned := make([]string, len(parts))
	for i, p := range parts {
		cleaned[i] = Clean(p)
	}
	return strings.Join(cleaned, ", ")
}
