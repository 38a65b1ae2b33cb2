// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sanitize normalizes generated answers before they reach the user.
// Generation models occasionally loop, repeating a sentence with minor
// wording changes; Clean strips those repeats and tidies the whitespace.
package sanitize

import (
	"regexp"
	"strings"
)

// Fallbacks substituted when cleaning cannot produce usable text.
const (
	// EmptyFallback replaces an empty input.
	EmptyFallback = "No response generated."
	// OverCleanedFallback replaces output that cleaning reduced to almost nothing.
	OverCleanedFallback = "No relevant information found in the response."
)

const (
	// shortResponseLimit is the input length below which deduplication is
	// skipped; responses this short cannot contain meaningful repeats.
	shortResponseLimit = 20
	// minLineLength is the line length below which near-duplicate detection
	// does not apply. Short lines like list markers repeat legitimately.
	minLineLength = 10
	// minCleanedLength is the minimum usable length of a cleaned response.
	minCleanedLength = 10
	// similarityLimit is the word-set Jaccard similarity above which two
	// lines count as duplicates.
	similarityLimit = 0.8
)

var blankRunPattern = regexp.MustCompile(`\n\s*\n\s*\n+`)

// Clean normalizes a generated response: removes repeated and near-duplicate
// lines, collapses runs of blank lines to a single blank line, and trims
// surrounding whitespace. Degenerate inputs map to fixed fallback messages.
// Clean is idempotent: Clean(Clean(s)) == Clean(s).
func Clean(response string) string {
	if response == "" {
		return EmptyFallback
	}

	cleaned := dropRepeatedLines(response)
	cleaned = blankRunPattern.ReplaceAllString(cleaned, "\n\n")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) < minCleanedLength {
		return OverCleanedFallback
	}
	return cleaned
}

// dropRepeatedLines removes lines that exactly repeat an earlier line, and
// lines over minLineLength whose word set is nearly identical to an earlier
// line's. Blank lines pass through so paragraph structure survives.
func dropRepeatedLines(text string) string {
	if len(text) < shortResponseLimit {
		return text
	}

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	seen := make([]string, 0, len(lines))
	seenExact := make(map[string]struct{}, len(lines))

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			kept = append(kept, line)
			continue
		}
		if _, dup := seenExact[line]; dup {
			continue
		}

		similar := false
		for _, prev := range seen {
			if len(line) > minLineLength && len(prev) > minLineLength &&
				wordSimilarity(line, prev) > similarityLimit {
				similar = true
				break
			}
		}
		if similar {
			continue
		}

		kept = append(kept, line)
		seen = append(seen, line)
		seenExact[line] = struct{}{}
	}

	return strings.Join(kept, "\n")
}

// wordSimilarity returns the Jaccard similarity of the lowercased word sets
// of a and b. Empty word sets score zero.
func wordSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	common := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			common++
		}
	}
	union := len(wordsA) + len(wordsB) - common
	return float64(common) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
