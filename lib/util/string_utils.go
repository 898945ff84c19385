package util

import (
	"regexp"
	"strings"
)

// ConditionalString returns valueIfTrue if condition is true, otherwise valueIfFalse
func ConditionalString(condition bool, valueIfTrue, valueIfFalse string) string {
	if condition {
		return valueIfTrue
	}
	return valueIfFalse
}

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9áéíóúñü\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugCollapse = regexp.MustCompile(`-+`)
)

// Slugify converts a company name into a URL-safe slug, capped at 60 characters.
func Slugify(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = slugStrip.ReplaceAllString(out, "")
	out = slugSpaces.ReplaceAllString(out, "-")
	out = slugCollapse.ReplaceAllString(out, "-")
	if runes := []rune(out); len(runes) > 60 {
		out = string(runes[:60])
	}
	return out
}

// UsernameFromEmail derives a default username from the local part of an email address.
func UsernameFromEmail(email, fallback string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return fallback
	}
	return local
}
