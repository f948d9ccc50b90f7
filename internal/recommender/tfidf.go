package recommender

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and splits it into words of at least two
// characters, dropping English stop words.
func Tokenize(text string) []string {
	var tokens []string
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if !englishStopWords[tok] {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// sparseVector maps a vocabulary index to its weight.
type sparseVector map[int]float64

func (v sparseVector) dot(o sparseVector) float64 {
	if len(o) < len(v) {
		v, o = o, v
	}
	var sum float64
	for i, w := range v {
		sum += w * o[i]
	}
	return sum
}

// tfidf vectorizes documents with raw term counts and smoothed inverse
// document frequency, idf = ln((1+n)/(1+df)) + 1. Terms are indexed in
// alphabetical order and rows are L2-normalized.
func tfidf(docs []string) []sparseVector {
	tokenized := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tokenized[i] = Tokenize(doc)
		seen := make(map[string]bool)
		for _, tok := range tokenized[i] {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	vocabulary := make([]string, 0, len(df))
	for term := range df {
		vocabulary = append(vocabulary, term)
	}
	sort.Strings(vocabulary)
	termIdx := make(map[string]int, len(vocabulary))
	idf := make([]float64, len(vocabulary))
	n := float64(len(docs))
	for i, term := range vocabulary {
		termIdx[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vectors := make([]sparseVector, len(docs))
	for i, toks := range tokenized {
		vec := make(sparseVector)
		for _, tok := range toks {
			vec[termIdx[tok]]++
		}
		var norm float64
		for j, tf := range vec {
			vec[j] = tf * idf[j]
			norm += vec[j] * vec[j]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range vec {
				vec[j] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors
}

// cosineSimilarityMatrix returns the pairwise similarity of L2-normalized
// vectors.
func cosineSimilarityMatrix(vectors []sparseVector) [][]float64 {
	sim := make([][]float64, len(vectors))
	for i := range sim {
		sim[i] = make([]float64, len(vectors))
	}
	for i := range vectors {
		for j := i; j < len(vectors); j++ {
			s := vectors[i].dot(vectors[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}
