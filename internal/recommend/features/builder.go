// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package features

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// ErrIncompleteRecord indicates a joined record lacks a required field.
var ErrIncompleteRecord = errors.New("incomplete record")

// ProgressFunc receives catalog processing progress.
type ProgressFunc func(done, total int)

// progressInterval is how many records pass between progress reports.
const progressInterval = 500

// Builder turns joined catalog records into tagged movies.
// It holds no mutable state and is safe for concurrent use.
type Builder struct {
	stemmer   Stemmer
	castLimit int
	logger    zerolog.Logger
	progress  ProgressFunc
}

// Option configures a Builder.
type Option func(*Builder)

// WithProgress registers a progress callback for ProcessCatalog.
func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) {
		b.progress = fn
	}
}

// NewBuilder creates a Builder keeping castLimit top-billed cast members.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBuilder(stemmer Stemmer, castLimit int, logger zerolog.Logger, opts ...Option) *Builder {
	b := &Builder{
		stemmer:   stemmer,
		castLimit: castLimit,
		logger:    logger.With().Str("component", "features").Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// joinedRecord is one row of the movie/credits inner join.
type joinedRecord struct {
	movie  recommend.MovieRecord
	credit recommend.CreditRecord
}

// missingField returns the first required field that is empty, or "".
func (r *joinedRecord) missingField() string {
	switch {
	case r.movie.Genres == "":
		return "genres"
	case r.movie.Keywords == "":
		return "keywords"
	case r.movie.OriginalTitle == "":
		return "original_title"
	case r.movie.Overview == "":
		return "overview"
	case r.credit.Cast == "":
		return "cast"
	case r.credit.Crew == "":
		return "crew"
	default:
		return ""
	}
}

// TagMovie builds the tagged movie for one joined movie/credits pair.
// The movie's original title becomes the served title.
//
//nolint:gocritic // records passed by value, they are small and read-only
func (b *Builder) TagMovie(movie recommend.MovieRecord, credit recommend.CreditRecord) (recommend.TaggedMovie, error) {
	rec := joinedRecord{movie: movie, credit: credit}
	if field := rec.missingField(); field != "" {
		return recommend.TaggedMovie{}, fmt.Errorf("%s of %q: %w", field, movie.Title, ErrIncompleteRecord)
	}

	genres, err := ExtractGenreNames(movie.Genres)
	if err != nil {
		return recommend.TaggedMovie{}, withTitle(err, movie.Title)
	}
	keywords, err := ExtractKeywordNames(movie.Keywords)
	if err != nil {
		return recommend.TaggedMovie{}, withTitle(err, movie.Title)
	}
	cast, err := ExtractTopCast(credit.Cast, b.castLimit)
	if err != nil {
		return recommend.TaggedMovie{}, withTitle(err, movie.Title)
	}
	director, err := ExtractDirector(credit.Crew)
	if err != nil {
		return recommend.TaggedMovie{}, withTitle(err, movie.Title)
	}

	return recommend.TaggedMovie{
		ID:    movie.ID,
		Title: movie.OriginalTitle,
		Tags:  BuildTagString(b.stemmer, genres, cast, keywords, director, TokenizeOverview(movie.Overview)),
	}, nil
}

// withTitle records the offending title on a MetadataError.
func withTitle(err error, title string) error {
	var me *recommend.MetadataError
	if errors.As(err, &me) && me.Title == "" {
		me.Title = title
	}
	return err
}

// ProcessCatalog inner-joins movies and credits on title, drops records with
// a missing or undecodable field, and tags the rest.
//
// Output order is join order: movies in input order, and for a title with
// several credits rows, those rows in input order. The returned statistics
// account for every dropped record. Only context cancellation is returned
// as an error; per-record failures are counted and logged.
func (b *Builder) ProcessCatalog(ctx context.Context, movies []recommend.MovieRecord, credits []recommend.CreditRecord) ([]recommend.TaggedMovie, recommend.CatalogStats, error) {
	stats := recommend.CatalogStats{
		MoviesRead:  len(movies),
		CreditsRead: len(credits),
	}

	joined := b.join(movies, credits, &stats)
	tagged := make([]recommend.TaggedMovie, 0, len(joined))

	for i := range joined {
		if i%progressInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, fmt.Errorf("process catalog: %w", err)
			}
			b.reportProgress(i, len(joined))
		}

		movie, err := b.TagMovie(joined[i].movie, joined[i].credit)
		switch {
		case errors.Is(err, ErrIncompleteRecord):
			stats.Incomplete++
			b.logger.Debug().Err(err).Int64("id", joined[i].movie.ID).Msg("dropping incomplete record")
			continue
		case errors.Is(err, recommend.ErrMalformedMetadata):
			stats.Malformed++
			b.logger.Warn().Err(err).Int64("id", joined[i].movie.ID).Msg("dropping malformed record")
			continue
		case err != nil:
			return nil, stats, fmt.Errorf("tag movie %d: %w", joined[i].movie.ID, err)
		}

		tagged = append(tagged, movie)
	}

	stats.Tagged = len(tagged)
	b.reportProgress(len(joined), len(joined))

	b.logger.Info().
		Int("movies", stats.MoviesRead).
		Int("credits", stats.CreditsRead).
		Int("unmatched_movies", stats.UnmatchedMovies).
		Int("unmatched_credits", stats.UnmatchedCredits).
		Int("incomplete", stats.Incomplete).
		Int("malformed", stats.Malformed).
		Int("tagged", stats.Tagged).
		Float64("drop_rate", stats.DropRate()).
		Msg("catalog processed")

	return tagged, stats, nil
}

// join performs the title inner join and counts the rows it loses.
func (b *Builder) join(movies []recommend.MovieRecord, credits []recommend.CreditRecord, stats *recommend.CatalogStats) []joinedRecord {
	byTitle := make(map[string][]int, len(credits))
	for i := range credits {
		byTitle[credits[i].Title] = append(byTitle[credits[i].Title], i)
	}

	matchedCredits := make(map[string]struct{}, len(byTitle))
	joined := make([]joinedRecord, 0, len(movies))

	for i := range movies {
		rows, ok := byTitle[movies[i].Title]
		if !ok {
			stats.UnmatchedMovies++
			b.logger.Debug().
				Int64("id", movies[i].ID).
				Str("title", movies[i].Title).
				Msg("movie has no credits")
			continue
		}
		matchedCredits[movies[i].Title] = struct{}{}
		for _, j := range rows {
			joined = append(joined, joinedRecord{movie: movies[i], credit: credits[j]})
		}
	}

	for title, rows := range byTitle {
		if _, ok := matchedCredits[title]; !ok {
			stats.UnmatchedCredits += len(rows)
		}
	}

	stats.Joined = len(joined)
	return joined
}

func (b *Builder) reportProgress(done, total int) {
	if b.progress != nil {
		b.progress(done, total)
	}
}
