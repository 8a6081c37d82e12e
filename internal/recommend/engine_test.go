// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockResolver resolves by case-insensitive prefix, falling back to the
// first title, and reports a fixed score.
type mockResolver struct {
	score int
	err   error
	calls int
	mu    sync.Mutex
}

func (m *mockResolver) Resolve(query string, titles []string) (Match, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.err != nil {
		return Match{}, m.err
	}
	if len(titles) == 0 {
		return Match{}, ErrNoMatchFound
	}
	for i, title := range titles {
		if strings.HasPrefix(strings.ToLower(title), strings.ToLower(query)) {
			return Match{Title: title, Index: i, Score: m.score}, nil
		}
	}
	return Match{Title: titles[0], Index: 0, Score: m.score}, nil
}

func (m *mockResolver) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// testModel builds a 5-movie model with a hand-written symmetric matrix.
// Rows 1 and 2 tie against row 0; row 4 duplicates the title of row 0.
func testModel(t *testing.T) *Model {
	t.Helper()

	movies := []TaggedMovie{
		{ID: 10, Title: "Alpha", Tags: "a b c"},
		{ID: 11, Title: "Bravo", Tags: "a b"},
		{ID: 12, Title: "Charlie", Tags: "a c"},
		{ID: 13, Title: "Delta", Tags: "d"},
		{ID: 14, Title: "Alpha", Tags: "a b c d"},
	}
	data := []float64{
		1.0, 0.8, 0.8, 0.0, 0.9,
		0.8, 1.0, 0.5, 0.0, 0.6,
		0.8, 0.5, 1.0, 0.0, 0.6,
		0.0, 0.0, 0.0, 1.0, 0.5,
		0.9, 0.6, 0.6, 0.5, 1.0,
	}
	matrix, err := SimilarityMatrixFromData(len(movies), data)
	if err != nil {
		t.Fatalf("SimilarityMatrixFromData() error = %v", err)
	}
	vocab, err := NewVocabulary([]string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("NewVocabulary() error = %v", err)
	}

	return &Model{
		Version:    3,
		TrainedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Movies:     movies,
		Vocabulary: vocab,
		Matrix:     matrix,
		Stats:      CatalogStats{MoviesRead: 6, Tagged: 5, UnmatchedMovies: 1},
	}
}

func newTestEngine(t *testing.T, cfg *Config, resolver TitleResolver) *Engine {
	t.Helper()

	engine, err := NewEngine(cfg, resolver, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		engine, err := NewEngine(nil, &mockResolver{}, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		if engine.GetConfig().Limits.DefaultK != DefaultConfig().Limits.DefaultK {
			t.Error("expected default config")
		}
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Limits.DefaultK = 0
		if _, err := NewEngine(cfg, &mockResolver{}, zerolog.Nop()); err == nil {
			t.Error("NewEngine() error = nil, want error")
		}
	})

	t.Run("nil resolver rejected", func(t *testing.T) {
		if _, err := NewEngine(nil, nil, zerolog.Nop()); err == nil {
			t.Error("NewEngine() error = nil, want error")
		}
	})
}

func TestEngine_QueriesBeforeLoad(t *testing.T) {
	engine := newTestEngine(t, nil, &mockResolver{})
	ctx := context.Background()

	if _, err := engine.Recommend(ctx, "Alpha", 2); !errors.Is(err, ErrModelNotLoaded) {
		t.Errorf("Recommend() error = %v, want ErrModelNotLoaded", err)
	}
	if _, err := engine.ResolveTitle(ctx, "Alpha"); !errors.Is(err, ErrModelNotLoaded) {
		t.Errorf("ResolveTitle() error = %v, want ErrModelNotLoaded", err)
	}
	if _, _, err := engine.Movies(0, 10); !errors.Is(err, ErrModelNotLoaded) {
		t.Errorf("Movies() error = %v, want ErrModelNotLoaded", err)
	}
	if engine.Ready() {
		t.Error("Ready() = true before Load")
	}
	if engine.Status().Loaded {
		t.Error("Status().Loaded = true before Load")
	}
}

func TestEngine_Load(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Model) *Model
		wantErr bool
	}{
		{name: "valid model", modify: func(m *Model) *Model { return m }},
		{name: "nil model", modify: func(*Model) *Model { return nil }, wantErr: true},
		{
			name: "matrix size mismatch",
			modify: func(m *Model) *Model {
				m.Movies = m.Movies[:3]
				return m
			},
			wantErr: true,
		},
		{
			name: "missing vocabulary",
			modify: func(m *Model) *Model {
				m.Vocabulary = nil
				return m
			},
			wantErr: true,
		},
		{
			name: "missing matrix",
			modify: func(m *Model) *Model {
				m.Matrix = nil
				return m
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, nil, &mockResolver{})
			err := engine.Load(tt.modify(testModel(t)))
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if engine.Ready() == tt.wantErr {
				t.Errorf("Ready() = %v after Load error %v", engine.Ready(), err)
			}
		})
	}
}

func TestEngine_Recommend(t *testing.T) {
	engine := newTestEngine(t, nil, &mockResolver{score: 90})
	if err := engine.Load(testModel(t)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name      string
		query     string
		k         int
		wantMatch string
		wantRows  []int
	}{
		{
			name:      "ties broken by ascending row and duplicate titles excluded",
			query:     "alp",
			k:         3,
			wantMatch: "Alpha",
			wantRows:  []int{1, 2, 3},
		},
		{
			name:      "k smaller than catalog",
			query:     "Bravo",
			k:         2,
			wantMatch: "Bravo",
			wantRows:  []int{0, 4},
		},
		{
			name:      "k larger than catalog returns everything else",
			query:     "Delta",
			k:         50,
			wantMatch: "Delta",
			wantRows:  []int{4, 0, 1, 2},
		},
		{
			name:      "zero k uses default",
			query:     "Charlie",
			k:         0,
			wantMatch: "Charlie",
			wantRows:  []int{0, 4, 1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := engine.Recommend(ctx, tt.query, tt.k)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if resp.Match.Title != tt.wantMatch {
				t.Errorf("Match.Title = %q, want %q", resp.Match.Title, tt.wantMatch)
			}
			if len(resp.Recommendations) != len(tt.wantRows) {
				t.Fatalf("got %d recommendations, want %d", len(resp.Recommendations), len(tt.wantRows))
			}
			for i, rec := range resp.Recommendations {
				if rec.Index != tt.wantRows[i] {
					t.Errorf("recommendation[%d].Index = %d, want %d", i, rec.Index, tt.wantRows[i])
				}
				if rec.Rank != i+1 {
					t.Errorf("recommendation[%d].Rank = %d, want %d", i, rec.Rank, i+1)
				}
				if rec.Title == resp.Match.Title {
					t.Errorf("recommendation[%d] repeats the query title %q", i, rec.Title)
				}
			}
		})
	}
}

func TestEngine_RecommendOrderingIsTotal(t *testing.T) {
	engine := newTestEngine(t, nil, &mockResolver{})
	model := testModel(t)
	if err := engine.Load(model); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, movie := range model.Movies {
		resp, err := engine.Recommend(context.Background(), movie.Title, 10)
		if err != nil {
			t.Fatalf("Recommend(%q) error = %v", movie.Title, err)
		}
		recs := resp.Recommendations
		for i := 1; i < len(recs); i++ {
			a, b := recs[i-1], recs[i]
			if a.Score < b.Score || (a.Score == b.Score && a.Index > b.Index) {
				t.Errorf("Recommend(%q): %+v ordered before %+v", movie.Title, a, b)
			}
		}
	}
}

func TestEngine_RecommendMatchIndexIsFirstRow(t *testing.T) {
	// The resolver reports the duplicate row; the engine must use the
	// first row carrying that title.
	resolver := &fixedResolver{match: Match{Title: "Alpha", Index: 4, Score: 100}}
	engine := newTestEngine(t, nil, resolver)
	if err := engine.Load(testModel(t)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	resp, err := engine.Recommend(context.Background(), "Alpha", 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Match.Index != 0 {
		t.Errorf("Match.Index = %d, want 0", resp.Match.Index)
	}
}

type fixedResolver struct {
	match Match
}

func (f *fixedResolver) Resolve(string, []string) (Match, error) {
	return f.match, nil
}

func TestEngine_RecommendErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("negative k", func(t *testing.T) {
		engine := newTestEngine(t, nil, &mockResolver{})
		_ = engine.Load(testModel(t))
		if _, err := engine.Recommend(ctx, "Alpha", -1); !errors.Is(err, ErrInvalidK) {
			t.Errorf("Recommend() error = %v, want ErrInvalidK", err)
		}
	})

	t.Run("resolver failure is propagated", func(t *testing.T) {
		engine := newTestEngine(t, nil, &mockResolver{err: ErrNoMatchFound})
		_ = engine.Load(testModel(t))
		if _, err := engine.Recommend(ctx, "Alpha", 2); !errors.Is(err, ErrNoMatchFound) {
			t.Errorf("Recommend() error = %v, want ErrNoMatchFound", err)
		}
	})

	t.Run("title absent from index", func(t *testing.T) {
		engine := newTestEngine(t, nil, &fixedResolver{match: Match{Title: "Zulu", Score: 100}})
		_ = engine.Load(testModel(t))
		if _, err := engine.Recommend(ctx, "Zulu", 2); !errors.Is(err, ErrUnknownMovie) {
			t.Errorf("Recommend() error = %v, want ErrUnknownMovie", err)
		}
	})

	t.Run("score below floor", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Matching.MinScore = 80
		engine := newTestEngine(t, cfg, &mockResolver{score: 42})
		_ = engine.Load(testModel(t))
		if _, err := engine.Recommend(ctx, "Alpha", 2); !errors.Is(err, ErrNoMatchFound) {
			t.Errorf("Recommend() error = %v, want ErrNoMatchFound", err)
		}
		if got := engine.GetMetrics().ErrorCount; got != 1 {
			t.Errorf("ErrorCount = %d, want 1", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		engine := newTestEngine(t, nil, &mockResolver{})
		_ = engine.Load(testModel(t))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := engine.ResolveTitle(cctx, "Alpha"); !errors.Is(err, context.Canceled) {
			t.Errorf("ResolveTitle() error = %v, want context.Canceled", err)
		}
	})
}

func TestEngine_KIsClamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.DefaultK = 1
	cfg.Limits.MaxK = 2
	engine := newTestEngine(t, cfg, &mockResolver{})
	_ = engine.Load(testModel(t))

	resp, err := engine.Recommend(context.Background(), "Delta", 4)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Recommendations) != 2 || resp.Metadata.K != 2 {
		t.Errorf("got %d recommendations with K=%d, want 2 and 2", len(resp.Recommendations), resp.Metadata.K)
	}
}

func TestEngine_Cache(t *testing.T) {
	resolver := &mockResolver{}
	engine := newTestEngine(t, nil, resolver)
	if err := engine.Load(testModel(t)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	ctx := context.Background()

	first, err := engine.Recommend(ctx, "Bravo", 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if first.Metadata.CacheHit {
		t.Error("first response marked as cache hit")
	}

	// Mutating a returned response must not leak into the cache
	first.Recommendations[0].Title = "mutated"

	second, err := engine.Recommend(ctx, "Bravo", 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !second.Metadata.CacheHit {
		t.Error("second response not marked as cache hit")
	}
	if second.Recommendations[0].Title == "mutated" {
		t.Error("cached response was mutated through a returned copy")
	}
	if resolver.callCount() != 1 {
		t.Errorf("resolver called %d times, want 1", resolver.callCount())
	}

	m := engine.GetMetrics()
	if m.CacheHits != 1 || m.CacheMisses != 1 || m.RequestCount != 2 {
		t.Errorf("GetMetrics() = %+v, want 1 hit, 1 miss, 2 requests", m)
	}

	// Reload clears the cache
	if err := engine.Load(testModel(t)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	third, _ := engine.Recommend(ctx, "Bravo", 2)
	if third.Metadata.CacheHit {
		t.Error("response after reload served from stale cache")
	}
}

func TestEngine_CacheDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	resolver := &mockResolver{}
	engine := newTestEngine(t, cfg, resolver)
	_ = engine.Load(testModel(t))

	for i := 0; i < 3; i++ {
		resp, err := engine.Recommend(context.Background(), "Bravo", 2)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if resp.Metadata.CacheHit {
			t.Error("cache hit with cache disabled")
		}
	}
	if resolver.callCount() != 3 {
		t.Errorf("resolver called %d times, want 3", resolver.callCount())
	}
}

func TestEngine_Movies(t *testing.T) {
	engine := newTestEngine(t, nil, &mockResolver{})
	_ = engine.Load(testModel(t))

	tests := []struct {
		name      string
		offset    int
		limit     int
		wantLen   int
		wantFirst string
	}{
		{name: "first page", offset: 0, limit: 2, wantLen: 2, wantFirst: "Alpha"},
		{name: "last partial page", offset: 3, limit: 10, wantLen: 2, wantFirst: "Delta"},
		{name: "offset past end", offset: 9, limit: 10, wantLen: 0},
		{name: "negative offset treated as zero", offset: -4, limit: 1, wantLen: 1, wantFirst: "Alpha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movies, total, err := engine.Movies(tt.offset, tt.limit)
			if err != nil {
				t.Fatalf("Movies() error = %v", err)
			}
			if total != 5 {
				t.Errorf("total = %d, want 5", total)
			}
			if len(movies) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(movies), tt.wantLen)
			}
			if tt.wantLen > 0 && movies[0].Title != tt.wantFirst {
				t.Errorf("first = %q, want %q", movies[0].Title, tt.wantFirst)
			}
		})
	}
}

func TestEngine_Status(t *testing.T) {
	engine := newTestEngine(t, nil, &mockResolver{})
	model := testModel(t)
	_ = engine.Load(model)

	status := engine.Status()
	if !status.Loaded {
		t.Fatal("Status().Loaded = false")
	}
	if status.ModelVersion != 3 || status.MovieCount != 5 || status.VocabularySize != 4 {
		t.Errorf("Status() = %+v", status)
	}
	if !status.TrainedAt.Equal(model.TrainedAt) {
		t.Errorf("TrainedAt = %v, want %v", status.TrainedAt, model.TrainedAt)
	}
	if status.Stats.UnmatchedMovies != 1 {
		t.Errorf("Stats.UnmatchedMovies = %d, want 1", status.Stats.UnmatchedMovies)
	}
	if engine.GetMetrics().ModelLoads != 1 {
		t.Errorf("ModelLoads = %d, want 1", engine.GetMetrics().ModelLoads)
	}
}

func TestEngine_ConcurrentQueriesAndReloads(t *testing.T) {
	engine := newTestEngine(t, nil, &mockResolver{})
	_ = engine.Load(testModel(t))

	var wg sync.WaitGroup
	titles := []string{"Alpha", "Bravo", "Charlie", "Delta"}
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := engine.Recommend(context.Background(), titles[(id+i)%len(titles)], 2); err != nil {
					t.Errorf("Recommend() error = %v", err)
					return
				}
			}
		}(g)
	}
	for i := 0; i < 5; i++ {
		_ = engine.Load(testModel(t))
	}
	wg.Wait()
}

func TestRankNeighbors(t *testing.T) {
	row := []float64{0.3, 1.0, 0.3, 0.0, 0.7}
	none := func(int) bool { return false }

	tests := []struct {
		name    string
		k       int
		exclude func(int) bool
		want    []int
	}{
		{name: "full ordering", k: 10, exclude: none, want: []int{1, 4, 0, 2, 3}},
		{name: "truncated", k: 2, exclude: none, want: []int{1, 4}},
		{name: "self excluded", k: 3, exclude: func(j int) bool { return j == 1 }, want: []int{4, 0, 2}},
		{name: "zero k", k: 0, exclude: none, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rankNeighbors(row, tt.k, tt.exclude)
			if len(got) != len(tt.want) {
				t.Fatalf("rankNeighbors() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("rankNeighbors() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

// suggestingResolver ranks titles in catalog order, reporting the last
// duplicate's row to exercise index normalization.
type suggestingResolver struct {
	mockResolver
}

func (s *suggestingResolver) Top(_ string, titles []string, n int) ([]Match, error) {
	if len(titles) == 0 {
		return nil, ErrNoMatchFound
	}
	last := make(map[string]int)
	var order []string
	for i, title := range titles {
		if _, seen := last[title]; !seen {
			order = append(order, title)
		}
		last[title] = i
	}
	out := make([]Match, 0, n)
	for i, title := range order {
		if i == n {
			break
		}
		out = append(out, Match{Title: title, Index: last[title], Score: 100 - i})
	}
	return out, nil
}

func TestEngine_Suggest(t *testing.T) {
	t.Run("ranking resolver", func(t *testing.T) {
		engine := newTestEngine(t, nil, &suggestingResolver{})
		if err := engine.Load(testModel(t)); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		matches, err := engine.Suggest(context.Background(), "a", 2)
		if err != nil {
			t.Fatalf("Suggest() error = %v", err)
		}
		if len(matches) != 2 {
			t.Fatalf("Suggest() returned %d matches, want 2", len(matches))
		}
		if matches[0].Title != "Alpha" || matches[0].Index != 0 {
			t.Errorf("Suggest()[0] = %+v, want Alpha at first row", matches[0])
		}
		if matches[1].Title != "Bravo" {
			t.Errorf("Suggest()[1] = %+v, want Bravo", matches[1])
		}
	})

	t.Run("plain resolver falls back to best match", func(t *testing.T) {
		engine := newTestEngine(t, nil, &mockResolver{score: 77})
		if err := engine.Load(testModel(t)); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		matches, err := engine.Suggest(context.Background(), "char", 5)
		if err != nil {
			t.Fatalf("Suggest() error = %v", err)
		}
		if len(matches) != 1 || matches[0].Title != "Charlie" || matches[0].Score != 77 {
			t.Errorf("Suggest() = %+v, want single Charlie match", matches)
		}
	})

	t.Run("not loaded", func(t *testing.T) {
		engine := newTestEngine(t, nil, &suggestingResolver{})
		if _, err := engine.Suggest(context.Background(), "a", 2); !errors.Is(err, ErrModelNotLoaded) {
			t.Errorf("Suggest() error = %v, want ErrModelNotLoaded", err)
		}
	})
}
