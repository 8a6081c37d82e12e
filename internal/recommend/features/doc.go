// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package features turns raw catalog records into tag strings.
//
// A tag string is the whitespace-joined concatenation of, in order:
//
//  1. genre names
//  2. the top-billed cast (three by default)
//  3. keyword names
//  4. the first credited director, if any
//  5. the plot overview split on whitespace
//
// with every word lowercased and reduced to its stem. Multi-word names are
// not fused: "Science Fiction" contributes two words. Overview punctuation
// is kept as-is; the vectorizer's analyzer discards it later.
//
// Structured fields arrive as JSON text and are decoded into typed entries
// at this boundary. A record whose field cannot be decoded is dropped with
// a recommend.MetadataError, counted, and logged; the rest of the catalog
// is still processed.
//
// Only the first crew entry whose job is "Director" is used. Films with
// co-directors surface a single name.
package features
