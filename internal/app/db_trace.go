package app

import (
	"regexp"
	"strings"
)

// Span attributes should stay readable; long INSERT batches get clipped.
const maxTracedQueryLength = 512

var queryWhitespace = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	flat := queryWhitespace.ReplaceAllString(query, " ")
	if len(flat) <= maxTracedQueryLength {
		return flat
	}

	return flat[:maxTracedQueryLength] + "..."
}
