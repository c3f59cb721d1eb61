// Package filter implements the free-text match used by the list screens.
package filter

import (
	"regexp"
	"strings"
)

// Matcher matches text case-insensitively. The text is treated as a regular
// expression when it compiles as one and as a literal otherwise.
type Matcher struct {
	re *regexp.Regexp
}

func Compile(text string) Matcher {
	re, err := regexp.Compile("(?i)" + text)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(text))
	}
	return Matcher{re: re}
}

// Empty reports whether text clears the filter instead of setting one.
func Empty(text string) bool {
	return strings.TrimSpace(text) == ""
}

// MatchAny reports whether at least one field matches.
func (m Matcher) MatchAny(fields ...string) bool {
	for _, f := range fields {
		if m.re.MatchString(f) {
			return true
		}
	}
	return false
}

// Contains is the plain case-insensitive substring test used where the
// filter is not a pattern.
func Contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
