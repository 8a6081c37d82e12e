// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the training pipeline and the query path.
// Compare with errors.Is; callers wrap them with context.
var (
	// ErrMalformedMetadata indicates a structured catalog field could not be
	// decoded. The record is dropped and training continues.
	ErrMalformedMetadata = errors.New("malformed metadata")

	// ErrNoMatchFound indicates title resolution had no candidates, or the
	// best candidate scored below the configured floor.
	ErrNoMatchFound = errors.New("no matching movie found")

	// ErrUnknownMovie indicates a resolved title is absent from the index.
	// Seeing it means the model and its title table disagree.
	ErrUnknownMovie = errors.New("unknown movie")

	// ErrEmptyVocabulary indicates no term survived vocabulary fitting.
	// Training aborts before the matrix is built.
	ErrEmptyVocabulary = errors.New("empty vocabulary")

	// ErrModelNotLoaded indicates a query arrived before any model was loaded.
	ErrModelNotLoaded = errors.New("no model loaded")

	// ErrInvalidK indicates a non-positive or over-limit result count.
	ErrInvalidK = errors.New("invalid result count")
)

// MetadataError describes a catalog field that failed to decode.
type MetadataError struct {
	// Field is the catalog column, e.g. "genres" or "crew".
	Field string

	// Title is the join title of the offending record, if known.
	Title string

	// Err is the underlying decode error.
	Err error
}

// Error implements error.
func (e *MetadataError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("malformed metadata in %s of %q: %v", e.Field, e.Title, e.Err)
	}
	return fmt.Sprintf("malformed metadata in %s: %v", e.Field, e.Err)
}

// Unwrap returns the decode error.
func (e *MetadataError) Unwrap() error { return e.Err }

// Is reports ErrMalformedMetadata as a match so callers can test the
// category without knowing the concrete type.
func (e *MetadataError) Is(target error) bool {
	return target == ErrMalformedMetadata
}
