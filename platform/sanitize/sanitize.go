// Package sanitize provides text sanitization utilities for upstream and user text.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	// lineBreakRegex matches tags that render as a visual break
	lineBreakRegex = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li)\s*/?\s*>`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
// Entities are decoded and the result is stripped again to catch encoded tags.
func StripHTML(s string) string {
	result := lineBreakRegex.ReplaceAllString(s, " ")
	result = htmlTagRegex.ReplaceAllString(result, "")
	result = html.UnescapeString(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text strips HTML and collapses runs of whitespace to a single space.
// Use for single-line fields such as names, addresses and phone numbers.
func Text(s string) string {
	return whitespaceRun.ReplaceAllString(StripHTML(s), " ")
}
