// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package similarity

import (
	"fmt"
	"math"
	"slices"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// Vectorizer turns tag strings into term-count vectors.
type Vectorizer struct {
	analyzer *Analyzer
}

// NewVectorizer creates a vectorizer using analyzer for tokenization.
func NewVectorizer(analyzer *Analyzer) *Vectorizer {
	return &Vectorizer{analyzer: analyzer}
}

// Fit learns a vocabulary of at most maxTerms terms from the corpus.
//
// Terms are ranked by total occurrences across all tag strings; equal
// counts are ranked by first occurrence in corpus order. The selected terms
// are then sorted lexically, which fixes their vector columns.
func (v *Vectorizer) Fit(tags []string, maxTerms int) (*recommend.Vocabulary, error) {
	if maxTerms < 1 {
		return nil, fmt.Errorf("max terms must be positive, got %d", maxTerms)
	}

	counts := make(map[string]int)
	var order []string // first-occurrence order
	for _, tag := range tags {
		for _, term := range v.analyzer.Analyze(tag) {
			if _, seen := counts[term]; !seen {
				order = append(order, term)
			}
			counts[term]++
		}
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("fit %d documents: %w", len(tags), recommend.ErrEmptyVocabulary)
	}

	// SortStableFunc keeps first-occurrence order among equal counts.
	ranked := slices.Clone(order)
	slices.SortStableFunc(ranked, func(a, b string) int {
		return counts[b] - counts[a]
	})
	if len(ranked) > maxTerms {
		ranked = ranked[:maxTerms]
	}

	slices.Sort(ranked)
	return recommend.NewVocabulary(ranked)
}

// Vectorize counts each vocabulary term in tag. The result has exactly
// vocab.Size() entries; terms outside the vocabulary are ignored.
func (v *Vectorizer) Vectorize(tag string, vocab *recommend.Vocabulary) []int {
	vec := make([]int, vocab.Size())
	for _, term := range v.analyzer.Analyze(tag) {
		if i, ok := vocab.Index(term); ok {
			vec[i]++
		}
	}
	return vec
}

// SparseVector holds the non-zero entries of a count vector, indices
// ascending.
type SparseVector struct {
	Indices []int
	Counts  []int
	norm    float64
}

// Norm returns the Euclidean norm.
func (s *SparseVector) Norm() float64 { return s.norm }

// NewSparseVector compresses a dense count vector.
func NewSparseVector(dense []int) SparseVector {
	var sv SparseVector
	var sumSq float64
	for i, c := range dense {
		if c != 0 {
			sv.Indices = append(sv.Indices, i)
			sv.Counts = append(sv.Counts, c)
			sumSq += float64(c) * float64(c)
		}
	}
	sv.norm = math.Sqrt(sumSq)
	return sv
}

// VectorizeSparse is Vectorize without materializing the zero entries.
func (v *Vectorizer) VectorizeSparse(tag string, vocab *recommend.Vocabulary) SparseVector {
	counts := make(map[int]int)
	for _, term := range v.analyzer.Analyze(tag) {
		if i, ok := vocab.Index(term); ok {
			counts[i]++
		}
	}

	sv := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Counts:  make([]int, 0, len(counts)),
	}
	for i := range counts {
		sv.Indices = append(sv.Indices, i)
	}
	slices.Sort(sv.Indices)

	var sumSq float64
	for _, i := range sv.Indices {
		c := counts[i]
		sv.Counts = append(sv.Counts, c)
		sumSq += float64(c) * float64(c)
	}
	sv.norm = math.Sqrt(sumSq)
	return sv
}

// dot merges two index-sorted sparse vectors.
func dot(a, b *SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] < b.Indices[j]:
			i++
		case a.Indices[i] > b.Indices[j]:
			j++
		default:
			sum += float64(a.Counts[i]) * float64(b.Counts[j])
			i++
			j++
		}
	}
	return sum
}
