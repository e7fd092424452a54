package util

import "strings"

func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// NormalizeName canonicalizes a natural-key name: surrounding whitespace is
// trimmed and internal runs of whitespace collapse to a single space.
// Matching on names is case-sensitive, so casing is preserved.
func NormalizeName(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}
