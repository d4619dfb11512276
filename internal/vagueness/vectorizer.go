package vagueness

import (
	"math"
	"sort"
	"strings"
)

// Vectorizer turns prompts into fixed-width TF-IDF feature vectors over
// a learned vocabulary. Vocabulary indices are assigned in sorted token
// order so that transforming the same text always yields the same
// vector, which in turn keeps scoring deterministic across an
// export/import round trip.
type Vectorizer struct {
	vocabulary map[string]int
	docFreq    []int
	docCount   int
}

// NewVectorizer builds a vectorizer from a training corpus.
func NewVectorizer(corpus []string) *Vectorizer {
	tokens := make(map[string]int)
	docFreqByToken := make(map[string]int)

	for _, doc := range corpus {
		seen := make(map[string]bool)
		for _, tok := range tokenize(doc) {
			tokens[tok]++
			if !seen[tok] {
				docFreqByToken[tok]++
				seen[tok] = true
			}
		}
	}

	ordered := make([]string, 0, len(tokens))
	for tok := range tokens {
		ordered = append(ordered, tok)
	}
	sort.Strings(ordered)

	vocab := make(map[string]int, len(ordered))
	docFreq := make([]int, len(ordered))
	for i, tok := range ordered {
		vocab[tok] = i
		docFreq[i] = docFreqByToken[tok]
	}

	return &Vectorizer{
		vocabulary: vocab,
		docFreq:    docFreq,
		docCount:   len(corpus),
	}
}

// Transform produces the L2-normalized TF-IDF vector for a text.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.docFreq))
	for _, tok := range tokenize(text) {
		idx, ok := v.vocabulary[tok]
		if !ok {
			continue
		}
		vec[idx]++
	}

	var norm float64
	for i := range vec {
		if vec[i] == 0 {
			continue
		}
		idf := math.Log(float64(1+v.docCount)/float64(1+v.docFreq[i])) + 1
		vec[i] *= idf
		norm += vec[i] * vec[i]
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Size returns the vocabulary width.
func (v *Vectorizer) Size() int {
	return len(v.docFreq)
}

func tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}
