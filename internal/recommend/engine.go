// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// TitleResolver maps free-text user input onto one of a set of known titles.
// Implementations must return ErrNoMatchFound when titles is empty and a
// best match otherwise.
type TitleResolver interface {
	Resolve(query string, titles []string) (Match, error)
}

// TitleSuggester is implemented by resolvers that can rank several
// candidate titles, best first, each title at most once.
type TitleSuggester interface {
	Top(query string, titles []string, n int) ([]Match, error)
}

// servedModel is an immutable snapshot of a loaded model plus the lookup
// tables derived from it.
type servedModel struct {
	model    *Model
	titles   []string
	rowIndex map[string]int // title -> first row with that title
	loadedAt time.Time
}

// Engine answers "movies like this one" queries against a trained model.
// It is safe for concurrent use: the served model is swapped atomically and
// never mutated, so queries take no locks.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	resolver TitleResolver

	current atomic.Pointer[servedModel]
	cache   *cache.LRU[*Response]

	// Metrics
	requestCount atomic.Int64
	resolveCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64
	modelLoads   atomic.Int64
}

// NewEngine creates a query engine. The engine serves nothing until Load is
// called.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, resolver TitleResolver, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if resolver == nil {
		return nil, fmt.Errorf("title resolver is required")
	}

	e := &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		resolver: resolver,
	}
	if cfg.Cache.Enabled {
		e.cache = cache.NewLRU[*Response](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// Load validates m and makes it the served model. In-flight queries finish
// against the previous model.
func (e *Engine) Load(m *Model) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	titles := make([]string, len(m.Movies))
	rowIndex := make(map[string]int, len(m.Movies))
	for i, movie := range m.Movies {
		titles[i] = movie.Title
		if _, seen := rowIndex[movie.Title]; !seen {
			rowIndex[movie.Title] = i
		}
	}

	e.current.Store(&servedModel{
		model:    m,
		titles:   titles,
		rowIndex: rowIndex,
		loadedAt: time.Now(),
	})
	e.modelLoads.Add(1)

	if e.cache != nil {
		e.cache.Clear()
	}

	metrics.RecordModelLoaded(m.Version, len(m.Movies), m.Vocabulary.Size())
	e.logger.Info().
		Int("version", m.Version).
		Int("movies", len(m.Movies)).
		Int("vocabulary", m.Vocabulary.Size()).
		Time("trained_at", m.TrainedAt).
		Msg("model loaded")

	return nil
}

// snapshot returns the served model or ErrModelNotLoaded.
func (e *Engine) snapshot() (*servedModel, error) {
	sm := e.current.Load()
	if sm == nil {
		return nil, ErrModelNotLoaded
	}
	return sm, nil
}

// ResolveTitle returns the catalog title that best matches query, with its
// row and score.
func (e *Engine) ResolveTitle(ctx context.Context, query string) (Match, error) {
	start := time.Now()
	sm, err := e.snapshot()
	if err != nil {
		e.errorCount.Add(1)
		return Match{}, err
	}

	match, err := e.resolve(ctx, sm, query)
	metrics.RecordQuery("resolve", time.Since(start), err)
	if err != nil {
		e.errorCount.Add(1)
		return Match{}, err
	}
	return match, nil
}

// Suggest returns up to n candidate titles for query, best first. Resolvers
// that cannot rank alternatives yield the single best match.
func (e *Engine) Suggest(ctx context.Context, query string, n int) ([]Match, error) {
	start := time.Now()
	sm, err := e.snapshot()
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	suggester, ok := e.resolver.(TitleSuggester)
	if !ok {
		match, err := e.resolve(ctx, sm, query)
		metrics.RecordQuery("suggest", time.Since(start), err)
		if err != nil {
			e.errorCount.Add(1)
			return nil, err
		}
		return []Match{match}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := suggester.Top(query, sm.titles, n)
	metrics.RecordQuery("suggest", time.Since(start), err)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("suggest %q: %w", query, err)
	}
	for i := range matches {
		if row, ok := sm.rowIndex[matches[i].Title]; ok {
			matches[i].Index = row
		}
	}
	return matches, nil
}

// resolve runs fuzzy matching, applies the score floor and normalizes the
// match index to the first row carrying the matched title.
func (e *Engine) resolve(ctx context.Context, sm *servedModel, query string) (Match, error) {
	if err := ctx.Err(); err != nil {
		return Match{}, err
	}
	e.resolveCount.Add(1)

	match, err := e.resolver.Resolve(query, sm.titles)
	if err != nil {
		return Match{}, fmt.Errorf("resolve %q: %w", query, err)
	}
	metrics.RecordMatchScore(match.Score)

	if floor := e.config.Matching.MinScore; floor > 0 && match.Score < floor {
		return Match{}, fmt.Errorf("resolve %q: best match %q scored %d < %d: %w",
			query, match.Title, match.Score, floor, ErrNoMatchFound)
	}

	row, ok := sm.rowIndex[match.Title]
	if !ok {
		return Match{}, fmt.Errorf("resolve %q: matched title %q: %w", query, match.Title, ErrUnknownMovie)
	}
	match.Index = row

	return match, nil
}

// Recommend resolves query to a catalog movie and returns its k nearest
// neighbors by cosine similarity. k == 0 selects the configured default and
// values above the configured maximum are clamped.
//
// Results never include the query movie, nor any other row sharing its
// title. Ordering is by descending score with ties broken by ascending row.
func (e *Engine) Recommend(ctx context.Context, query string, k int) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	resp, err := e.recommend(ctx, query, k, start)
	metrics.RecordQuery("recommend", time.Since(start), err)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	return resp, nil
}

func (e *Engine) recommend(ctx context.Context, query string, k int, start time.Time) (*Response, error) {
	k, err := e.normalizeK(k)
	if err != nil {
		return nil, err
	}

	sm, err := e.snapshot()
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("rec:%d:%d:%s", sm.model.Version, k, query)
	if resp := e.tryGetCachedResponse(cacheKey, start); resp != nil {
		return resp, nil
	}

	match, err := e.resolve(ctx, sm, query)
	if err != nil {
		return nil, err
	}

	neighbors := rankNeighbors(sm.model.Matrix.Row(match.Index), k, func(j int) bool {
		return sm.titles[j] == match.Title
	})

	recs := make([]Recommendation, len(neighbors))
	for rank, j := range neighbors {
		movie := sm.model.Movies[j]
		recs[rank] = Recommendation{
			Rank:  rank + 1,
			ID:    movie.ID,
			Title: movie.Title,
			Index: j,
			Score: sm.model.Matrix.At(match.Index, j),
		}
	}

	resp := &Response{
		Query:           query,
		Match:           match,
		Recommendations: recs,
		Metadata: ResponseMetadata{
			K:            k,
			LatencyMS:    time.Since(start).Milliseconds(),
			ModelVersion: sm.model.Version,
			TrainedAt:    sm.model.TrainedAt,
			Timestamp:    time.Now(),
		},
	}

	if e.cache != nil {
		e.cache.Add(cacheKey, resp)
	}

	e.logger.Debug().
		Str("query", query).
		Str("match", match.Title).
		Int("score", match.Score).
		Int("returned", len(recs)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return copyResponse(resp), nil
}

// normalizeK applies the default and the upper clamp.
func (e *Engine) normalizeK(k int) (int, error) {
	switch {
	case k < 0:
		return 0, fmt.Errorf("k = %d: %w", k, ErrInvalidK)
	case k == 0:
		return e.config.Limits.DefaultK, nil
	case k > e.config.Limits.MaxK:
		e.logger.Debug().Int("requested", k).Int("max_k", e.config.Limits.MaxK).Msg("clamping result count")
		return e.config.Limits.MaxK, nil
	default:
		return k, nil
	}
}

// tryGetCachedResponse returns a copy of a cached response, or nil.
func (e *Engine) tryGetCachedResponse(key string, start time.Time) *Response {
	if e.cache == nil {
		return nil
	}

	cached, ok := e.cache.Get(key)
	metrics.RecordCacheLookup(ok)
	if !ok {
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	resp := copyResponse(cached)
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	resp.Metadata.Timestamp = time.Now()
	return resp
}

// copyResponse copies a response so callers cannot mutate cached state.
func copyResponse(resp *Response) *Response {
	out := *resp
	out.Recommendations = slices.Clone(resp.Recommendations)
	return &out
}

// rankNeighbors returns up to k column indices of row ordered by descending
// score, ties by ascending index, skipping columns for which exclude is true.
func rankNeighbors(row []float64, k int, exclude func(int) bool) []int {
	candidates := make([]int, 0, len(row))
	for j := range row {
		if !exclude(j) {
			candidates = append(candidates, j)
		}
	}

	slices.SortFunc(candidates, func(a, b int) int {
		switch {
		case row[a] > row[b]:
			return -1
		case row[a] < row[b]:
			return 1
		default:
			return a - b
		}
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// Movies returns a page of the served tag table and the total movie count.
func (e *Engine) Movies(offset, limit int) ([]TaggedMovie, int, error) {
	sm, err := e.snapshot()
	if err != nil {
		return nil, 0, err
	}

	total := len(sm.model.Movies)
	if offset < 0 {
		offset = 0
	}
	if offset >= total || limit <= 0 {
		return []TaggedMovie{}, total, nil
	}

	end := offset + limit
	if end > total {
		end = total
	}
	return slices.Clone(sm.model.Movies[offset:end]), total, nil
}

// Status describes the served model.
func (e *Engine) Status() Status {
	sm := e.current.Load()
	if sm == nil {
		return Status{}
	}
	return Status{
		Loaded:         true,
		ModelVersion:   sm.model.Version,
		TrainedAt:      sm.model.TrainedAt,
		LoadedAt:       sm.loadedAt,
		MovieCount:     len(sm.model.Movies),
		VocabularySize: sm.model.Vocabulary.Size(),
		Stats:          sm.model.Stats,
	}
}

// Ready reports whether a model is being served.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// GetMetrics returns the current engine metrics.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount: e.requestCount.Load(),
		ResolveCount: e.resolveCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		ErrorCount:   e.errorCount.Load(),
		ModelLoads:   e.modelLoads.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}
