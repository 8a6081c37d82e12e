// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package matching resolves free-text movie titles against the catalog.

Users rarely type a title exactly as the catalog spells it. The matcher
scores every known title against the query with a weighted blend of
edit-distance ratios and returns the best one, together with its score, so
callers can decide whether the match is good enough.

# Scoring

Scores come from fuzzywuzzy's weighted ratio (github.com/paul-mannino/go-fuzzywuzzy).
Both strings are lowercased and every character that is not a letter or
digit becomes a space. The pair is scored from 0 to 100 by the best of the
plain ratio, the token sort ratio and the token set ratio. When one string
is at least 1.5 times longer than the other, the partial variants are used,
which compare the shorter string against windows of the longer one. Token
and partial scores are scaled down so an exact whole-string match always
wins. Non-ASCII letters are kept.

# Resolution

Resolve returns the highest scoring title. Equal scores keep the earliest
title in the candidate order. Resolve fails with recommend.ErrNoMatchFound
only when there are no candidates; a poor match is still a match.

# Usage

	m := matching.NewMatcher()
	match, err := m.Resolve("The Dark Knigt", titles)
	if err != nil {
	    return err
	}
	fmt.Println(match.Title, match.Score) // The Dark Knight 97
*/
package matching
