// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package features

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// DirectorJob is the crew job that identifies a director.
const DirectorJob = "Director"

// namedEntry is one element of a genres, keywords or cast list.
type namedEntry struct {
	Name *string `json:"name"`
}

// crewEntry is one element of a crew list.
type crewEntry struct {
	Name *string `json:"name"`
	Job  *string `json:"job"`
}

var (
	errMissingName = errors.New("entry has no name")
	errMissingJob  = errors.New("entry has no job")
)

// decodeNames decodes a JSON list of objects carrying a "name" and returns
// the first limit names in listed order; a negative limit keeps them all.
// Only the returned entries must carry a name.
func decodeNames(field, raw string, limit int) ([]string, error) {
	var entries []namedEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, &recommend.MetadataError{Field: field, Err: err}
	}
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	names := make([]string, 0, len(entries))
	for i, entry := range entries {
		if entry.Name == nil {
			return nil, &recommend.MetadataError{Field: field, Err: fmt.Errorf("entry %d: %w", i, errMissingName)}
		}
		names = append(names, *entry.Name)
	}
	return names, nil
}

// ExtractGenreNames returns the genre names of a raw genres field in listed
// order.
func ExtractGenreNames(raw string) ([]string, error) {
	return decodeNames("genres", raw, -1)
}

// ExtractKeywordNames returns the keyword names of a raw keywords field in
// listed order. Keywords share the genres structure.
func ExtractKeywordNames(raw string) ([]string, error) {
	return decodeNames("keywords", raw, -1)
}

// ExtractTopCast returns the first limit cast names in billing order, or all
// of them when fewer are listed. Entries past the limit are not inspected.
func ExtractTopCast(raw string, limit int) ([]string, error) {
	return decodeNames("cast", raw, max(limit, 0))
}

// ExtractDirector returns a zero- or one-element list holding the name of
// the first crew entry whose job is exactly "Director". Entries are checked
// in order up to that director; later ones are not inspected.
func ExtractDirector(raw string) ([]string, error) {
	var entries []crewEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, &recommend.MetadataError{Field: "crew", Err: err}
	}

	for i, entry := range entries {
		if entry.Job == nil {
			return nil, &recommend.MetadataError{Field: "crew", Err: fmt.Errorf("entry %d: %w", i, errMissingJob)}
		}
		if *entry.Job != DirectorJob {
			continue
		}
		if entry.Name == nil {
			return nil, &recommend.MetadataError{Field: "crew", Err: fmt.Errorf("entry %d: %w", i, errMissingName)}
		}
		return []string{*entry.Name}, nil
	}
	return []string{}, nil
}
