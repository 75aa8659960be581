package utils

import (
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeKey lowercases identifiers such as session and zone ids.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
