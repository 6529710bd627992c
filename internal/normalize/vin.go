// VIN canonicalization and validation. Invalid VINs are everyday input, not
// errors: callers get ok=false and move on.
package normalize

import (
	"regexp"
	"strings"
)

// charset after canonicalization: I, O, Q excluded per the VIN standard
var vinCharset = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// CanonicalizeVIN uppercases and fixes the classic transcription errors:
// I->1, O->0, Q->0. Substitutions are applied per character, so they cannot
// cascade into each other's outputs. VINs are never lowercased.
func CanonicalizeVIN(vin string) string {
	v := strings.ToUpper(strings.TrimSpace(vin))
	return strings.Map(func(r rune) rune {
		switch r {
		case 'I':
			return '1'
		case 'O', 'Q':
			return '0'
		}
		return r
	}, v)
}

// ValidVINFormat reports whether v is exactly 17 chars of the allowed charset.
func ValidVINFormat(v string) bool {
	return len(v) == 17 && vinCharset.MatchString(v)
}

// noisyVIN rejects corrupted/placeholder VINs: any character repeated more
// than 4 times consecutively.
func noisyVIN(v string) bool {
	run := 1
	for i := 1; i < len(v); i++ {
		if v[i] == v[i-1] {
			run++
			if run > 4 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// CleanVINForTraining canonicalizes and validates a raw VIN. Returns ok=false
// for anything that should not enter the historical store.
func CleanVINForTraining(vin string) (string, bool) {
	if strings.TrimSpace(vin) == "" {
		return "", false
	}
	v := CanonicalizeVIN(vin)
	if !ValidVINFormat(v) || noisyVIN(v) {
		return "", false
	}
	return v, true
}

// check-digit tables (position 9, ISO 3779)
var vinCharValues = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9, 'S': 2,
	'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
	'0': 0, '1': 1, '2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
}

var vinWeights = [17]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

// ValidVINCheckDigit verifies the weighted checksum at position 9. Disabled by
// default in the pipeline: many genuine VINs in the feed fail it while still
// carrying usable maker/model/series information.
func ValidVINCheckDigit(v string) bool {
	if len(v) != 17 {
		return false
	}
	total := 0
	for i := 0; i < 17; i++ {
		val, ok := vinCharValues[v[i]]
		if !ok {
			return false
		}
		total += val * vinWeights[i]
	}
	expected := byte('0' + total%11)
	if total%11 == 10 {
		expected = 'X'
	}
	return v[8] == expected
}

// VINFeatures are the sub-fields used as prediction context.
type VINFeatures struct {
	WMI       string // chars 1-3: world manufacturer identifier
	VDS       string // chars 4-8
	YearCode  byte   // char 10
	PlantCode byte   // char 11
	VDSFull   string // chars 4-9
}

// ExtractVINFeatures returns the VIN sub-fields, or ok=false when the VIN does
// not clean up to a valid 17-char code.
func ExtractVINFeatures(vin string) (VINFeatures, bool) {
	v, ok := CleanVINForTraining(vin)
	if !ok {
		return VINFeatures{}, false
	}
	return VINFeatures{
		WMI:       v[0:3],
		VDS:       v[3:8],
		YearCode:  v[9],
		PlantCode: v[10],
		VDSFull:   v[3:9],
	}, true
}

// year codes cycle every 30 years; each code has two plausible candidates
var vinYearCandidates = map[byte][2]int{
	'A': {1980, 2010}, 'B': {1981, 2011}, 'C': {1982, 2012}, 'D': {1983, 2013},
	'E': {1984, 2014}, 'F': {1985, 2015}, 'G': {1986, 2016}, 'H': {1987, 2017},
	'J': {1988, 2018}, 'K': {1989, 2019}, 'L': {1990, 2020}, 'M': {1991, 2021},
	'N': {1992, 2022}, 'P': {1993, 2023}, 'R': {1994, 2024}, 'S': {1995, 2025},
	'T': {1996, 2026}, 'V': {1997, 2027}, 'W': {1998, 2028}, 'X': {1999, 2029},
	'Y': {2000, 2030}, '1': {2001, 2031}, '2': {2002, 2032}, '3': {2003, 2033},
	'4': {2004, 2034}, '5': {2005, 2035}, '6': {2006, 2036}, '7': {2007, 2037},
	'8': {2008, 2038}, '9': {2009, 2039},
}

// DecodeVINYear resolves a year code to a single year. For the letter codes
// A-X the later candidate is preferred (the fleet on the road today is mostly
// 2010s-2020s); digit codes and Y take the earlier one. A disambiguation
// heuristic, not a guarantee.
func DecodeVINYear(code byte) (int, bool) {
	years, ok := vinYearCandidates[code]
	if !ok {
		return 0, false
	}
	if code >= 'A' && code <= 'X' {
		return years[1], true
	}
	return years[0], true
}
