// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package similarity vectorizes tag strings and builds the all-pairs
// cosine similarity matrix.
//
// Vectors are integer term counts over a fixed vocabulary. Because a tag
// string touches only a few dozen of several thousand terms, vectors are
// kept sparse during matrix construction and compared by merging their
// index lists.
package similarity
