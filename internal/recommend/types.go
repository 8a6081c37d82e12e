// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"time"
)

// MovieRecord is a raw row from the movie attributes table.
//
// The list-valued fields (Genres, Keywords) hold the catalog's embedded JSON
// text verbatim; they are decoded by the feature builder. An empty string
// means the source value was missing.
type MovieRecord struct {
	// ID is the catalog's unique movie identifier.
	ID int64 `json:"id"`

	// Title is the join key shared with the credits table.
	Title string `json:"title"`

	// OriginalTitle is the display title served to callers.
	OriginalTitle string `json:"original_title"`

	// Genres is a JSON list of {"id", "name"} objects.
	Genres string `json:"genres"`

	// Keywords is a JSON list of {"id", "name"} objects.
	Keywords string `json:"keywords"`

	// Overview is the free-text plot summary.
	Overview string `json:"overview"`
}

// CreditRecord is a raw row from the credits table.
type CreditRecord struct {
	// MovieID is the catalog identifier of the credited movie.
	MovieID int64 `json:"movie_id"`

	// Title is the join key shared with the movie table.
	Title string `json:"title"`

	// Cast is a JSON list of cast objects in billing order.
	Cast string `json:"cast"`

	// Crew is a JSON list of crew objects carrying "name" and "job".
	Crew string `json:"crew"`
}

// TaggedMovie is a movie reduced to its normalized bag of terms.
// Its position in Model.Movies is its row and column in the similarity matrix.
type TaggedMovie struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Tags  string `json:"tags"`
}

// CatalogStats reports what happened to each source record while the
// catalog was joined, filtered and tagged.
type CatalogStats struct {
	// MoviesRead is the number of movie rows received.
	MoviesRead int `json:"movies_read"`

	// CreditsRead is the number of credit rows received.
	CreditsRead int `json:"credits_read"`

	// UnmatchedMovies counts movie rows with no credits row of the same title.
	UnmatchedMovies int `json:"unmatched_movies"`

	// UnmatchedCredits counts credit rows with no movie row of the same title.
	UnmatchedCredits int `json:"unmatched_credits"`

	// Joined is the number of rows produced by the inner join.
	Joined int `json:"joined"`

	// Incomplete counts joined rows dropped for a missing required field.
	Incomplete int `json:"incomplete"`

	// Malformed counts joined rows dropped because a structured field
	// could not be decoded.
	Malformed int `json:"malformed"`

	// Tagged is the number of movies that made it into the tag table.
	Tagged int `json:"tagged"`
}

// Dropped returns the number of source movie rows that did not produce a
// tagged movie, whatever the reason.
func (s CatalogStats) Dropped() int {
	return s.UnmatchedMovies + s.Incomplete + s.Malformed
}

// DropRate returns Dropped as a fraction of MoviesRead.
func (s CatalogStats) DropRate() float64 {
	if s.MoviesRead == 0 {
		return 0
	}
	return float64(s.Dropped()) / float64(s.MoviesRead)
}

// Vocabulary is the fixed term set a model was vectorized with.
// Terms are kept in ascending lexical order; a term's position is its
// column in every count vector.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// NewVocabulary builds a vocabulary from already-selected terms.
// Terms must be sorted and unique.
func NewVocabulary(terms []string) (*Vocabulary, error) {
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		if i > 0 && terms[i-1] >= term {
			return nil, fmt.Errorf("vocabulary terms not strictly sorted at %d: %q >= %q", i, terms[i-1], term)
		}
		index[term] = i
	}

	owned := make([]string, len(terms))
	copy(owned, terms)
	return &Vocabulary{terms: owned, index: index}, nil
}

// Size returns the number of terms, which is also the vector length.
func (v *Vocabulary) Size() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Index returns the column of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Terms returns a copy of the terms in column order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// SimilarityMatrix is a dense, square, row-major matrix of cosine scores.
// It is filled once during training and read-only afterwards, so concurrent
// readers need no locking.
type SimilarityMatrix struct {
	n    int
	data []float64
}

// NewSimilarityMatrix allocates a zeroed n x n matrix.
func NewSimilarityMatrix(n int) *SimilarityMatrix {
	return &SimilarityMatrix{n: n, data: make([]float64, n*n)}
}

// SimilarityMatrixFromData wraps row-major data of an n x n matrix.
func SimilarityMatrixFromData(n int, data []float64) (*SimilarityMatrix, error) {
	if n < 0 || len(data) != n*n {
		return nil, fmt.Errorf("matrix data has %d entries, want %d x %d", len(data), n, n)
	}
	return &SimilarityMatrix{n: n, data: data}, nil
}

// Size returns the number of rows (and columns).
func (m *SimilarityMatrix) Size() int {
	if m == nil {
		return 0
	}
	return m.n
}

// At returns the score at row i, column j.
func (m *SimilarityMatrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// SetSymmetric writes v at (i, j) and (j, i).
func (m *SimilarityMatrix) SetSymmetric(i, j int, v float64) {
	m.data[i*m.n+j] = v
	m.data[j*m.n+i] = v
}

// Row returns row i. The slice aliases the matrix and must not be modified.
func (m *SimilarityMatrix) Row(i int) []float64 {
	return m.data[i*m.n : (i+1)*m.n]
}

// Data returns the backing row-major slice for serialization.
func (m *SimilarityMatrix) Data() []float64 {
	return m.data
}

// Model is the complete output of one training run: the tag table, the
// vocabulary it was vectorized with, and the matrix built from those vectors.
type Model struct {
	Version    int               `json:"version"`
	TrainedAt  time.Time         `json:"trained_at"`
	Movies     []TaggedMovie     `json:"movies"`
	Vocabulary *Vocabulary       `json:"-"`
	Matrix     *SimilarityMatrix `json:"-"`
	Stats      CatalogStats      `json:"stats"`
}

// Validate checks that the tag table and matrix describe the same movies.
func (m *Model) Validate() error {
	if m == nil {
		return ErrModelNotLoaded
	}
	if m.Matrix == nil {
		return fmt.Errorf("model has no similarity matrix")
	}
	if m.Vocabulary == nil || m.Vocabulary.Size() == 0 {
		return fmt.Errorf("model vocabulary: %w", ErrEmptyVocabulary)
	}
	if m.Matrix.Size() != len(m.Movies) {
		return fmt.Errorf("matrix is %d x %d but catalog has %d movies",
			m.Matrix.Size(), m.Matrix.Size(), len(m.Movies))
	}
	return nil
}

// Match is the outcome of fuzzy title resolution.
type Match struct {
	// Title is the best-matching catalog title.
	Title string `json:"title"`

	// Index is the catalog row of the match.
	Index int `json:"index"`

	// Score is the match quality from 0 (unrelated) to 100 (identical
	// after normalization).
	Score int `json:"score"`
}

// Recommendation is one neighbor of the query movie.
type Recommendation struct {
	// Rank is the 1-based position in the result list.
	Rank int `json:"rank"`

	ID    int64  `json:"id"`
	Title string `json:"title"`

	// Index is the catalog row of the recommended movie.
	Index int `json:"index"`

	// Score is the cosine similarity to the query movie.
	Score float64 `json:"score"`
}

// Response is the result of a recommendation query.
type Response struct {
	// Query is the title exactly as supplied by the caller.
	Query string `json:"query"`

	// Match is the catalog movie the query resolved to.
	Match Match `json:"match"`

	// Recommendations are ordered by descending score, ties by ascending index.
	Recommendations []Recommendation `json:"recommendations"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// Titles returns the recommended titles in rank order.
func (r *Response) Titles() []string {
	titles := make([]string, len(r.Recommendations))
	for i, rec := range r.Recommendations {
		titles[i] = rec.Title
	}
	return titles
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	// K is the number of recommendations requested.
	K int `json:"k"`

	// LatencyMS is the query latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// CacheHit indicates whether the result was served from cache.
	CacheHit bool `json:"cache_hit"`

	// ModelVersion is the version of the model that answered.
	ModelVersion int `json:"model_version"`

	// TrainedAt is when that model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// Status describes the model currently being served.
type Status struct {
	Loaded         bool         `json:"loaded"`
	ModelVersion   int          `json:"model_version"`
	TrainedAt      time.Time    `json:"trained_at,omitempty"`
	LoadedAt       time.Time    `json:"loaded_at,omitempty"`
	MovieCount     int          `json:"movie_count"`
	VocabularySize int          `json:"vocabulary_size"`
	Stats          CatalogStats `json:"catalog_stats"`
}

// Metrics contains query counters for observability.
type Metrics struct {
	// RequestCount is the total number of recommendation requests.
	RequestCount int64 `json:"request_count"`

	// ResolveCount is the total number of title resolutions, including
	// those made on behalf of recommendation requests.
	ResolveCount int64 `json:"resolve_count"`

	// CacheHits is the number of cache hits.
	CacheHits int64 `json:"cache_hits"`

	// CacheMisses is the number of cache misses.
	CacheMisses int64 `json:"cache_misses"`

	// ErrorCount is the total number of failed queries.
	ErrorCount int64 `json:"error_count"`

	// ModelLoads is the number of models swapped in.
	ModelLoads int64 `json:"model_loads"`
}
