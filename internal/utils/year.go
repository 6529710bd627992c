package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var rxKeepDigits = regexp.MustCompile(`[^\d.]`)

// ParseYear parses model years as they appear in the raw feed: "2015",
// "2015.0", " 2015 ", with stray NBSP/thin-space characters. Returns 0, false
// when the value does not carry a usable year.
func ParseYear(s string) (int, bool) {
	repl := strings.NewReplacer(" ", "", " ", "", " ", "", "\t", "", ",", ".")
	s = repl.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	s = rxKeepDigits.ReplaceAllString(s, "")
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}
