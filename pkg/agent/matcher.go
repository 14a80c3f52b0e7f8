package agent

import (
	"strings"
)

// DefaultSimilarityThreshold is the minimum similarity ratio for two agent
// names to be considered a match when no threshold is configured.
const DefaultSimilarityThreshold = 0.7

// Normalize canonicalizes an agent name for comparison: whitespace is
// trimmed, letters are lowercased, and everything except ASCII letters,
// digits, and CJK ideographs is dropped. Emoji, punctuation, and spaces
// therefore never affect matching.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 0x4e00 && r <= 0x9fff:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokenize splits a name on whitespace and normalizes each token,
// dropping tokens that normalize to nothing.
func tokenize(name string) []string {
	var tokens []string
	for _, field := range strings.Fields(name) {
		if tok := Normalize(field); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Similarity returns a ratio in [0, 1] describing how closely two agent
// names match. Names that normalize to the same non-empty string score 1.0.
// When one normalized name contains the other, the score is at least 0.9.
// Otherwise the score is the Ratcliff/Obershelp ratio over the names'
// normalized whitespace tokens, so a single differing word weighs more than
// a differing character would.
func Similarity(a, b string) float64 {
	normA, normB := Normalize(a), Normalize(b)
	if normA == "" || normB == "" {
		return 0
	}
	if normA == normB {
		return 1.0
	}

	tokensA, tokensB := tokenize(a), tokenize(b)
	base := ratcliffObershelp(tokensA, tokensB)

	if strings.Contains(normA, normB) || strings.Contains(normB, normA) {
		if base < 0.9 {
			return 0.9
		}
	}
	return base
}

// IsMatch reports whether candidate matches the requested name: exactly,
// case-insensitively, or with Similarity at or above threshold.
func IsMatch(requested, candidate string, threshold float64) bool {
	if requested == candidate {
		return true
	}
	if strings.EqualFold(requested, candidate) {
		return true
	}
	return Similarity(requested, candidate) >= threshold
}

// ratcliffObershelp computes the Ratcliff/Obershelp similarity ratio over
// two token sequences: twice the number of matching tokens found by
// recursively locating the longest common contiguous run, divided by the
// total token count.
func ratcliffObershelp(a, b []string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	return 2 * float64(commonTokens(a, b)) / float64(total)
}

// commonTokens counts matching tokens per Ratcliff/Obershelp: find the
// longest common contiguous run, then recurse into the pieces on either
// side of it.
func commonTokens(a, b []string) int {
	startA, startB, length := longestCommonRun(a, b)
	if length == 0 {
		return 0
	}
	return length +
		commonTokens(a[:startA], b[:startB]) +
		commonTokens(a[startA+length:], b[startB+length:])
}

// longestCommonRun finds the longest contiguous run of equal tokens shared
// by a and b, returning its start offsets and length.
func longestCommonRun(a, b []string) (startA, startB, length int) {
	for i := range a {
		for j := range b {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > length {
				startA, startB, length = i, j, k
			}
		}
	}
	return startA, startB, length
}
