// Package utils provides tiny helpers shared across layers; nothing in
// here knows about cards or HTTP.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// valid integer. Query-string parsing never fails hard on bad input.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ClampInt bounds n to [lo, hi].
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
