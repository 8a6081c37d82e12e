// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package matching

import (
	"fmt"
	"slices"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// Scorer rates the similarity of two strings from 0 to 100.
type Scorer func(a, b string) int

// Matcher resolves queries to the best-scoring known title.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	scorer Scorer
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithScorer replaces the default WRatio scorer.
func WithScorer(s Scorer) Option {
	return func(m *Matcher) {
		if s != nil {
			m.scorer = s
		}
	}
}

// NewMatcher creates a matcher using WRatio unless overridden.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{scorer: WRatio}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolve returns the title that best matches query. The earliest title
// wins among equal scores. It fails only when titles is empty.
func (m *Matcher) Resolve(query string, titles []string) (recommend.Match, error) {
	if len(titles) == 0 {
		return recommend.Match{}, fmt.Errorf("no candidate titles: %w", recommend.ErrNoMatchFound)
	}

	best := recommend.Match{Title: titles[0], Index: 0, Score: -1}
	for i, title := range titles {
		score := m.scorer(query, title)
		if score > best.Score {
			best = recommend.Match{Title: title, Index: i, Score: score}
			if score == 100 {
				break
			}
		}
	}
	return best, nil
}

// Top returns up to n matches ordered by descending score, ties by
// candidate order. Titles appearing more than once are reported once.
func (m *Matcher) Top(query string, titles []string, n int) ([]recommend.Match, error) {
	if len(titles) == 0 {
		return nil, fmt.Errorf("no candidate titles: %w", recommend.ErrNoMatchFound)
	}
	if n <= 0 {
		return []recommend.Match{}, nil
	}

	seen := make(map[string]struct{}, len(titles))
	matches := make([]recommend.Match, 0, len(titles))
	for i, title := range titles {
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		matches = append(matches, recommend.Match{Title: title, Index: i, Score: m.scorer(query, title)})
	}

	slices.SortStableFunc(matches, func(a, b recommend.Match) int {
		return b.Score - a.Score
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}
