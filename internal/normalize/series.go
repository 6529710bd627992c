package normalize

import "strings"

// Series normalization replaces only the matched variant substring with the
// canonical form, preserving everything else verbatim. Rules are scanned
// longest-variant-first, maker-specific before the "*" wildcard, and the
// first boundary-safe match wins. At curated table sizes a linear scan over
// the sorted rules is plenty; no trie needed.

// Series rewrites the series string through the variant rules, or returns it
// unchanged when no rule matches.
func (n *Normalizer) Series(maker, series string) string {
	if strings.TrimSpace(series) == "" {
		return series
	}
	up := asciiUpper(series)
	makerUp := strings.ToUpper(strings.TrimSpace(maker))

	for _, rule := range n.rules.SeriesRules {
		if rule.Maker != "*" && rule.Maker != makerUp {
			continue
		}
		if st, en, ok := findVariantSpan(up, rule.Variant); ok {
			return series[:st] + rule.Canonical + series[en:]
		}
	}
	return series
}

// SeriesExact resolves the whole series string through the variant table,
// maker-specific entries first. Used during ingest, where series values are
// already isolated fields rather than free text.
func (n *Normalizer) SeriesExact(maker, series string) string {
	if canonical, ok := n.rules.LookupSeriesExact(maker, series); ok {
		return canonical
	}
	return series
}

// findVariantSpan locates a boundary-safe occurrence of key in the
// ASCII-uppercased s. Letters-only keys additionally must not be followed by
// an optional space/hyphen and a digit: a rule keyed on "CX" must not fire
// inside "CX-30" and corrupt it into "CX-5-30".
func findVariantSpan(s, key string) (start, end int, ok bool) {
	lettersOnly := isLettersOnly(key)
	from := 0
	for {
		idx := strings.Index(s[from:], key)
		if idx < 0 {
			return 0, 0, false
		}
		st := from + idx
		en := st + len(key)

		boundaryLeft := st == 0 || !isAlnumByte(s[st-1])
		boundaryRight := en == len(s) || !isAlnumByte(s[en])

		if boundaryLeft && boundaryRight {
			if !lettersOnly || !followedByDigit(s, en) {
				return st, en, true
			}
		}
		from = st + 1
	}
}

// followedByDigit reports whether position en is followed by an optional
// single space or hyphen and then a digit.
func followedByDigit(s string, en int) bool {
	i := en
	if i < len(s) && (s[i] == ' ' || s[i] == '-') {
		i++
	}
	return i < len(s) && s[i] >= '0' && s[i] <= '9'
}

func isLettersOnly(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

func isAlnumByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// asciiUpper uppercases ASCII letters only, keeping byte offsets aligned with
// the input so matched spans can be spliced back into the original string.
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
