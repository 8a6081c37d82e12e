// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package similarity

import (
	"regexp"
	"strings"
)

// termPattern matches runs of two or more word characters. Shorter runs
// and punctuation never become terms.
var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Analyzer splits a tag string into vocabulary terms: lowercase, extract
// word runs of at least two characters, drop stop words.
// It is immutable after construction and safe for concurrent use.
type Analyzer struct {
	stopWords map[string]struct{}
}

// NewAnalyzer creates an analyzer with the given stop words.
func NewAnalyzer(stopWords []string) *Analyzer {
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Analyzer{stopWords: set}
}

// NewEnglishAnalyzer creates an analyzer with the standard English stop words.
func NewEnglishAnalyzer() *Analyzer {
	return NewAnalyzer(englishStopWords)
}

// Analyze returns the terms of text in order of appearance.
func (a *Analyzer) Analyze(text string) []string {
	tokens := termPattern.FindAllString(strings.ToLower(text), -1)
	terms := tokens[:0]
	for _, tok := range tokens {
		if _, stop := a.stopWords[tok]; !stop {
			terms = append(terms, tok)
		}
	}
	return terms
}

// IsStopWord reports whether term is filtered out.
func (a *Analyzer) IsStopWord(term string) bool {
	_, ok := a.stopWords[strings.ToLower(term)]
	return ok
}
