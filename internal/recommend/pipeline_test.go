// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/matching"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
	"github.com/tomtom215/cinematch/internal/recommend/training"
)

type staticCatalog struct {
	movies  []recommend.MovieRecord
	credits []recommend.CreditRecord
}

func (c *staticCatalog) LoadMovies(context.Context) ([]recommend.MovieRecord, error) {
	return c.movies, nil
}

func (c *staticCatalog) LoadCredits(context.Context) ([]recommend.CreditRecord, error) {
	return c.credits, nil
}

// toyCatalog has three movies: two space adventures sharing most of their
// metadata, and a farm drama sharing only the Adventure genre with them.
func toyCatalog() *staticCatalog {
	return &staticCatalog{
		movies: []recommend.MovieRecord{
			{
				ID: 100, Title: "Space Voyage", OriginalTitle: "Space Voyage",
				Genres:   `[{"id": 878, "name": "Science Fiction"}, {"id": 12, "name": "Adventure"}]`,
				Keywords: `[{"id": 9882, "name": "space"}, {"id": 9951, "name": "alien"}]`,
				Overview: "Astronauts explore a distant galaxy.",
			},
			{
				ID: 200, Title: "Star Voyage", OriginalTitle: "Star Voyage",
				Genres:   `[{"id": 878, "name": "Science Fiction"}, {"id": 12, "name": "Adventure"}]`,
				Keywords: `[{"id": 9882, "name": "space"}]`,
				Overview: "Astronauts battle aliens.",
			},
			{
				ID: 300, Title: "Quiet Farm", OriginalTitle: "Quiet Farm",
				Genres:   `[{"id": 18, "name": "Drama"}, {"id": 12, "name": "Adventure"}]`,
				Keywords: `[{"id": 1, "name": "farm"}]`,
				Overview: "A family tends its crops.",
			},
		},
		credits: []recommend.CreditRecord{
			{
				MovieID: 100, Title: "Space Voyage",
				Cast: `[{"name": "Ann Ray"}, {"name": "Tom Hale"}]`,
				Crew: `[{"name": "Kim Lee", "job": "Director"}]`,
			},
			{
				MovieID: 200, Title: "Star Voyage",
				Cast: `[{"name": "Ann Ray"}]`,
				Crew: `[{"name": "Kim Lee", "job": "Director"}, {"name": "Max Roe", "job": "Editor"}]`,
			},
			{
				MovieID: 300, Title: "Quiet Farm",
				Cast: `[{"name": "Bob Stone"}]`,
				Crew: `[{"name": "Sue Park", "job": "Director"}]`,
			},
		},
	}
}

func trainToyModel(t *testing.T, store storage.ArtifactStore) *recommend.Model {
	t.Helper()

	trainer, err := training.NewTrainer(nil, toyCatalog(), store, "toy", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTrainer() error = %v", err)
	}
	model, _, err := trainer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return model
}

func newToyEngine(t *testing.T, model *recommend.Model) *recommend.Engine {
	t.Helper()

	engine, err := recommend.NewEngine(nil, matching.NewMatcher(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Load(model); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return engine
}

func TestPipeline_EndToEnd(t *testing.T) {
	model := trainToyModel(t, nil)
	engine := newToyEngine(t, model)

	resp, err := engine.Recommend(context.Background(), "Space Voyage", 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	got := resp.Titles()
	want := []string{"Star Voyage", "Quiet Farm"}
	if len(got) != len(want) {
		t.Fatalf("Recommend() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Recommend()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	recs := resp.Recommendations
	if recs[0].Score <= recs[1].Score {
		t.Errorf("scores not strictly descending: %v, %v", recs[0].Score, recs[1].Score)
	}
	if recs[1].Score <= 0 {
		t.Errorf("shared genre should give a positive score, got %v", recs[1].Score)
	}
	if resp.Match.Title != "Space Voyage" || resp.Match.Score != 100 {
		t.Errorf("Match = %+v, want exact Space Voyage", resp.Match)
	}
}

func TestPipeline_MatrixProperties(t *testing.T) {
	model := trainToyModel(t, nil)
	m := model.Matrix

	for i := 0; i < m.Size(); i++ {
		if m.At(i, i) != 1 {
			t.Errorf("diagonal[%d] = %v, want 1", i, m.At(i, i))
		}
		for j := 0; j < m.Size(); j++ {
			s := m.At(i, j)
			if s < 0 || s > 1 {
				t.Errorf("score[%d][%d] = %v out of [0, 1]", i, j, s)
			}
			if s != m.At(j, i) {
				t.Errorf("score[%d][%d] = %v != score[%d][%d] = %v", i, j, s, j, i, m.At(j, i))
			}
		}
	}
}

func TestPipeline_FuzzyQueryAndNeverSelf(t *testing.T) {
	engine := newToyEngine(t, trainToyModel(t, nil))

	resp, err := engine.Recommend(context.Background(), "quiet farn", 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Match.Title != "Quiet Farm" {
		t.Errorf("Match = %q, want Quiet Farm", resp.Match.Title)
	}
	if len(resp.Recommendations) != 2 {
		t.Errorf("got %d recommendations, want 2 (catalog minus the query)", len(resp.Recommendations))
	}
	for _, rec := range resp.Recommendations {
		if rec.Title == "Quiet Farm" {
			t.Error("recommendations include the query movie")
		}
	}
}

func TestPipeline_PersistAndReload(t *testing.T) {
	store, err := storage.OpenBadgerStore("")
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	trained := trainToyModel(t, store)

	loaded, _, err := store.Load(context.Background(), "toy", 0)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Version != trained.Version {
		t.Errorf("loaded version = %d, want %d", loaded.Version, trained.Version)
	}

	engine := newToyEngine(t, loaded)
	resp, err := engine.Recommend(context.Background(), "Star Voyage", 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if titles := resp.Titles(); len(titles) != 1 || titles[0] != "Space Voyage" {
		t.Errorf("Recommend() = %v, want [Space Voyage]", titles)
	}
}

func TestPipeline_EmptyTitleSet(t *testing.T) {
	if _, err := matching.NewMatcher().Resolve("Space Voyage", nil); !errors.Is(err, recommend.ErrNoMatchFound) {
		t.Errorf("Resolve() error = %v, want ErrNoMatchFound", err)
	}
}
