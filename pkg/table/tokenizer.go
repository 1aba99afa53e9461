package table

import "strings"

// Split breaks line at every occurrence of delim and returns exactly k
// segments. Missing trailing segments are empty strings and segments past
// the k-th are dropped. There is no quoting: a delimiter inside quotes
// still splits.
func Split(line string, delim rune, k int) []string {
	fields, _ := split(line, delim, k)
	return fields
}

// split is Split plus the number of segments the line carried, capped at
// k+1 so callers can tell short, exact and long lines apart.
func split(line string, delim rune, k int) ([]string, int) {
	if k <= 0 {
		return []string{}, 0
	}

	fields := make([]string, k)
	parts := strings.SplitN(line, string(delim), k+1)
	copy(fields, parts)
	return fields, len(parts)
}

// countColumns derives the column count of a table from its first line.
func countColumns(line string, delim rune) int {
	return strings.Count(line, string(delim)) + 1
}
