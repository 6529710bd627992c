package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes combining marks: "válvula" -> "valvula", "año" -> "ano".
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// FoldKey is the canonical lookup form used by the rule tables:
// trimmed, lowercased and accent-stripped.
func FoldKey(s string) string {
	return StripAccents(strings.ToLower(strings.TrimSpace(s)))
}

// CollapseSpaces squeezes runs of whitespace into single spaces and trims.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
