// cmd/verifact/util.go
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeClaim collapses whitespace runs, trims, and lowercases so that
// claims differing only in spacing or case map to the same cache entry.
func NormalizeClaim(text string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// ClaimHash returns the SHA-256 hex digest of the normalized claim.
func ClaimHash(text string) string {
	sum := sha256.Sum256([]byte(NormalizeClaim(text)))
	return hex.EncodeToString(sum[:])
}

// truncateString limits a string to max characters for error messages.
func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// clampInt bounds v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// firstN returns at most the first n elements of a string slice.
func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
