// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package features

import (
	"strings"

	"github.com/kljensen/snowball/english"
)

// Stemmer reduces a word to its stem.
type Stemmer interface {
	Stem(word string) string
}

// SnowballStemmer stems English words with the Snowball (Porter2) algorithm.
// It is stateless and safe for concurrent use.
type SnowballStemmer struct{}

// NewSnowballStemmer creates an English Snowball stemmer.
func NewSnowballStemmer() *SnowballStemmer {
	return &SnowballStemmer{}
}

// Stem lowercases word and strips its suffixes. Stop words are stemmed too,
// so the result depends only on the word itself.
func (s *SnowballStemmer) Stem(word string) string {
	return english.Stem(strings.ToLower(word), true)
}
