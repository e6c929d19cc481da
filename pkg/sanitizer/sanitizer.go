package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims the string and collapses internal whitespace runs
// into single spaces.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeLocation cleans free-text vehicle locations before storage.
func NormalizeLocation(location string) string {
	p := Pipeline{
		TrimAndNormalize,
	}
	return p.Apply(location)
}

// NormalizeIdentity normalizes caller-supplied renter/owner ids: trimmed,
// lowercased, no internal whitespace.
func NormalizeIdentity(id string) string {
	p := Pipeline{
		TrimAndNormalize,
		strings.ToLower,
		func(s string) string { return strings.ReplaceAll(s, " ", "") },
	}
	return p.Apply(id)
}
