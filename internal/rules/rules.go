// Package rules holds the curated text-processing tables. A Set is loaded
// once from the rules workbook and is immutable afterwards; every lookup is
// single-hop (no table entry references another table).
package rules

import (
	"sort"
	"strings"
)

type Gender byte

const (
	Masculine Gender = 'm'
	Feminine  Gender = 'f'
)

// SeriesKey addresses a series-variant rule. Maker "*" applies to all makers.
type SeriesKey struct {
	Maker   string // uppercased, or "*"
	Variant string // uppercased
}

// SeriesRule is one substring-replacement rule for series normalization.
type SeriesRule struct {
	Maker     string // uppercased, or "*"
	Variant   string // uppercased
	Canonical string
}

type Set struct {
	// verbatim phrase replacements, case-sensitive, highest priority
	UserCorrections map[string]string

	// token -> canonical word; keys accent-stripped lowercase
	Abbreviations map[string]string

	// phrase -> phrase, applied before tokenization in sheet order
	PhraseAbbreviations map[string]string
	PhraseOrder         []string

	// term -> synonym group id; match-time only, never canonicalization
	SynonymGroups map[string]int

	// whole-string series lookup used during ingest
	SeriesExact map[SeriesKey]string

	// substring rules sorted longest-variant-first, maker-specific before
	// wildcard for equal length
	SeriesRules []SeriesRule

	// accentless lowercase noun -> gender
	NounGender map[string]Gender
}

// builtin genders applied even when the sheet lacks the entry
var extraNounGenders = map[string]Gender{"paragolpes": Masculine}

// Seal sorts the series rules and merges the builtin noun genders. Load calls
// it; fixture sets built by hand must call it too. A Set is read-only after.
func (s *Set) Seal() {
	if s.NounGender == nil {
		s.NounGender = map[string]Gender{}
	}
	for noun, g := range extraNounGenders {
		if _, ok := s.NounGender[noun]; !ok {
			s.NounGender[noun] = g
		}
	}
	sort.SliceStable(s.SeriesRules, func(i, j int) bool {
		a, b := s.SeriesRules[i], s.SeriesRules[j]
		if len(a.Variant) != len(b.Variant) {
			return len(a.Variant) > len(b.Variant)
		}
		if (a.Maker == "*") != (b.Maker == "*") {
			return b.Maker == "*"
		}
		return a.Variant < b.Variant
	})
}

// LookupSeriesExact resolves a whole series string, maker-specific first.
func (s *Set) LookupSeriesExact(maker, series string) (string, bool) {
	m := strings.ToUpper(strings.TrimSpace(maker))
	if m == "" {
		m = "*"
	}
	v := strings.ToUpper(strings.TrimSpace(series))
	if got, ok := s.SeriesExact[SeriesKey{Maker: m, Variant: v}]; ok {
		return got, true
	}
	if got, ok := s.SeriesExact[SeriesKey{Maker: "*", Variant: v}]; ok {
		return got, true
	}
	return "", false
}
