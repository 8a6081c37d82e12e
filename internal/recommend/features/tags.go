// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package features

import "strings"

// TokenizeOverview splits free text on whitespace. Punctuation stays
// attached to its word.
func TokenizeOverview(text string) []string {
	return strings.Fields(text)
}

// BuildTagString concatenates the five token lists in fixed order, stems
// every whitespace-delimited word and joins the stems with single spaces.
// All-empty input yields "".
func BuildTagString(stemmer Stemmer, genres, cast, keywords, director, overview []string) string {
	var words []string
	for _, part := range [][]string{genres, cast, keywords, director, overview} {
		for _, token := range part {
			// Names may hold several words; each is stemmed on its own.
			words = append(words, strings.Fields(token)...)
		}
	}

	if len(words) == 0 {
		return ""
	}

	for i, word := range words {
		words[i] = stemmer.Stem(word)
	}
	return strings.Join(words, " ")
}
