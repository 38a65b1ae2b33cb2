// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// vectorizer computes TF-IDF vectors over a fixed corpus vocabulary.
// Vectors are L2-normalized so that the squared euclidean distance between
// two of them equals 2 - 2*cosine, the range ChromaDB-style stores report.
type vectorizer struct {
	vocabulary map[string]int
	idf        []float64
	dimension  int
}

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// newVectorizer builds the vocabulary and smoothed IDF weights from the
// corpus. An empty corpus yields a zero-dimension vectorizer whose vectors
// are all empty; distance between such vectors is the orthogonal maximum.
func newVectorizer(corpus []string) *vectorizer {
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		dimension:  len(terms),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return v
}

// vector returns the L2-normalized TF-IDF vector for text. Text sharing no
// vocabulary terms with the corpus produces the zero vector.
func (v *vectorizer) vector(text string) []float64 {
	vec := make([]float64, v.dimension)

	tf := make(map[int]int)
	total := 0
	for _, tok := range tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}

	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * v.idf[idx]
	}

	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// distance returns the squared euclidean distance between two normalized
// vectors: 0 for identical directions, 2 for orthogonal ones, up to 4 for
// opposite. Mismatched or zero vectors score the orthogonal maximum.
func distance(a, b []float64) float64 {
	if len(a) != len(b) {
		return 2.0
	}
	dot := 0.0
	normA := 0.0
	normB := 0.0
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 2.0
	}
	return 2.0 - 2.0*dot
}

// tokenize lowercases text and extracts word and number tokens, dropping
// common English stopwords.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
		"were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "again", "than", "so", "such",
		"into", "about", "between", "through", "during", "before", "after",
		"out", "off", "own", "same", "too", "very", "can", "will", "just",
		"what", "which", "who", "how", "where", "when", "do", "does", "i",
		"you", "your", "my",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
