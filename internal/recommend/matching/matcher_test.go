// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package matching

import (
	"errors"
	"testing"

	"github.com/tomtom215/cinematch/internal/recommend"
)

var catalogTitles = []string{
	"Avatar",
	"The Dark Knight Rises",
	"The Dark Knight",
	"Batman Begins",
	"Spectre",
}

func TestResolve_Typo(t *testing.T) {
	m := NewMatcher()

	match, err := m.Resolve("The Dark Knigt", catalogTitles)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if match.Title != "The Dark Knight" {
		t.Errorf("Resolve() title = %q, want %q", match.Title, "The Dark Knight")
	}
	if match.Index != 2 {
		t.Errorf("Resolve() index = %d, want 2", match.Index)
	}
	if match.Score != 97 {
		t.Errorf("Resolve() score = %d, want 97", match.Score)
	}
}

func TestResolve_Exact(t *testing.T) {
	m := NewMatcher()

	match, err := m.Resolve("spectre", catalogTitles)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if match.Title != "Spectre" || match.Score != 100 {
		t.Errorf("Resolve() = %+v, want Spectre at 100", match)
	}
}

func TestResolve_EmptyTitles(t *testing.T) {
	m := NewMatcher()

	for _, titles := range [][]string{nil, {}} {
		_, err := m.Resolve("Avatar", titles)
		if !errors.Is(err, recommend.ErrNoMatchFound) {
			t.Errorf("Resolve(%v) error = %v, want ErrNoMatchFound", titles, err)
		}
	}
}

func TestResolve_PoorMatchStillResolves(t *testing.T) {
	m := NewMatcher()

	match, err := m.Resolve("zzzzqqqq", catalogTitles)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if match.Title == "" {
		t.Error("Resolve() returned empty title")
	}
	if match.Score >= 50 {
		t.Errorf("Resolve() score = %d, expected a weak match", match.Score)
	}
}

func TestResolve_FirstMaximumWins(t *testing.T) {
	constant := func(string, string) int { return 42 }
	m := NewMatcher(WithScorer(constant))

	match, err := m.Resolve("anything", []string{"B", "A", "C"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if match.Index != 0 || match.Title != "B" {
		t.Errorf("Resolve() = %+v, want first candidate", match)
	}

	match, err = NewMatcher().Resolve("Up", []string{"Up", "Up"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if match.Index != 0 {
		t.Errorf("Resolve() index = %d, want 0 for duplicate titles", match.Index)
	}
}

func TestWithScorer_NilKeepsDefault(t *testing.T) {
	m := NewMatcher(WithScorer(nil))
	if m.scorer == nil {
		t.Fatal("scorer is nil")
	}
	if got := m.scorer("Avatar", "Avatar"); got != 100 {
		t.Errorf("default scorer = %d, want 100", got)
	}
}

func TestTop(t *testing.T) {
	m := NewMatcher()
	titles := append([]string{}, catalogTitles...)
	titles = append(titles, "The Dark Knight")

	matches, err := m.Top("The Dark Knigt", titles, 2)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Top() returned %d matches, want 2", len(matches))
	}
	if matches[0].Title != "The Dark Knight" || matches[0].Index != 2 {
		t.Errorf("Top()[0] = %+v, want The Dark Knight at index 2", matches[0])
	}
	if matches[1].Title != "The Dark Knight Rises" {
		t.Errorf("Top()[1] = %+v, want The Dark Knight Rises", matches[1])
	}
	if matches[0].Score < matches[1].Score {
		t.Error("Top() not ordered by descending score")
	}
}

func TestTop_Bounds(t *testing.T) {
	m := NewMatcher()

	if _, err := m.Top("x", nil, 3); !errors.Is(err, recommend.ErrNoMatchFound) {
		t.Errorf("Top(empty) error = %v, want ErrNoMatchFound", err)
	}

	matches, err := m.Top("x", catalogTitles, 0)
	if err != nil || len(matches) != 0 {
		t.Errorf("Top(n=0) = %v, %v; want empty", matches, err)
	}

	matches, err = m.Top("x", catalogTitles, 100)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(matches) != len(catalogTitles) {
		t.Errorf("Top(n=100) returned %d, want %d", len(matches), len(catalogTitles))
	}
}
