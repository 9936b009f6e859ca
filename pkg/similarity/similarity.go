package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Func scores how similar two strings are, in [0,1].
type Func func(a, b string) float64

// TokenSortRatio is an edit-distance similarity that is insensitive to token
// order: both inputs are lowercased, tokenized, sorted and rejoined before
// the Levenshtein distance is taken. "engineer software" and "Software
// Engineer" score 1.0.
func TokenSortRatio(a, b string) float64 {
	na := normalizeSorted(a)
	nb := normalizeSorted(b)

	if na == nb {
		if na == "" {
			return 0
		}
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}

	dist := levenshtein.ComputeDistance(na, nb)
	longest := len([]rune(na))
	if l := len([]rune(nb)); l > longest {
		longest = l
	}

	return 1 - float64(dist)/float64(longest)
}

func normalizeSorted(s string) string {
	tokens := Tokenize(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Tokenize lowercases text and splits it into terms. Characters common in
// technology names ('+', '#', '.') count as part of a term so "c++", "c#"
// and "node.js" survive intact; trailing dots are stripped.
func Tokenize(text string) []string {
	var tokens []string
	var word strings.Builder

	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if w != "" {
			tokens = append(tokens, w)
		}
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// TermFrequencyCosine computes the cosine similarity of the term-frequency
// vectors of two texts, skipping stopwords. It is the keyword-overlap safety
// net for generic terms that were never extracted as discrete skills.
func TermFrequencyCosine(a, b string) float64 {
	fa := termFrequencies(a)
	fb := termFrequencies(b)

	if len(fa) == 0 || len(fb) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for term, count := range fa {
		normA += count * count
		if other, ok := fb[term]; ok {
			dot += count * other
		}
	}
	for _, count := range fb {
		normB += count * count
	}

	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func termFrequencies(text string) map[string]float64 {
	freq := make(map[string]float64)
	for _, token := range Tokenize(text) {
		if len([]rune(token)) < 2 || stopwords[token] {
			continue
		}
		freq[token]++
	}
	return freq
}

// Common English stopwords; noise for keyword overlap.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "to": true, "was": true,
	"were": true, "will": true, "with": true, "you": true, "your": true,
	"we": true, "our": true, "this": true, "have": true,
}
