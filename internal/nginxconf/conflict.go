package nginxconf

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const locationKeyword = "location"

// HasRoute reports whether any line of doc declares route, i.e. reads
// "location <route>" after its leading whitespace, with the route ending on
// a word boundary. "location" in the middle of a line does not count.
func HasRoute(doc Document, route Route) bool {
	for _, line := range doc.Lines {
		if declaresRoute(line, string(route)) {
			return true
		}
	}
	return false
}

func declaresRoute(line, route string) bool {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)

	rest, ok := strings.CutPrefix(rest, locationKeyword)
	if !ok {
		return false
	}

	// At least one whitespace character between keyword and route.
	trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if len(trimmed) == len(rest) {
		return false
	}

	after, ok := strings.CutPrefix(trimmed, route)
	if !ok {
		return false
	}
	return endsOnBoundary(route, after)
}

// endsOnBoundary reports whether a route followed by the text after is a
// complete token. A route ending in a word character must not run into
// another word character ("/api" does not match "/apiv2"). A route ending in
// a separator such as "/" is already delimited.
func endsOnBoundary(route, after string) bool {
	last, _ := utf8.DecodeLastRuneInString(route)
	if !isWordRune(last) {
		return true
	}
	if after == "" {
		return true
	}
	next, _ := utf8.DecodeRuneInString(after)
	return !isWordRune(next)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
