// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// ErrMissingColumn is returned when a catalog file lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Required columns of each table.
var (
	movieColumns  = []string{"id", "title", "original_title", "genres", "keywords", "overview"}
	creditColumns = []string{"movie_id", "title", "cast", "crew"}
)

// Config locates the catalog files and tunes the embedded DuckDB.
type Config struct {
	// MoviesPath is the CSV file of movie attributes.
	MoviesPath string

	// CreditsPath is the CSV file of cast and crew.
	CreditsPath string

	// Threads is the DuckDB worker thread count. Zero means runtime.NumCPU().
	Threads int

	// MaxMemory bounds DuckDB memory, e.g. "512MB". Empty leaves the default.
	MaxMemory string
}

// Loader reads the catalog CSVs through an in-memory DuckDB.
// Every string column is read as text and NULL becomes "", so the embedded
// JSON lists arrive exactly as stored.
type Loader struct {
	cfg    Config
	conn   *sql.DB
	logger zerolog.Logger
}

// NewLoader opens an in-memory DuckDB for reading the catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLoader(cfg Config, logger zerolog.Logger) (*Loader, error) {
	if cfg.MoviesPath == "" || cfg.CreditsPath == "" {
		return nil, fmt.Errorf("catalog requires both movies and credits paths")
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	// Disable auto-install/auto-load; read_csv is built in.
	connStr := fmt.Sprintf(":memory:?threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false", threads)
	if cfg.MaxMemory != "" {
		connStr += "&max_memory=" + cfg.MaxMemory
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close() //nolint:errcheck // ping error takes precedence
		return nil, fmt.Errorf("failed to connect to catalog database: %w", err)
	}

	return &Loader{
		cfg:    cfg,
		conn:   conn,
		logger: logger.With().Str("component", "catalog").Logger(),
	}, nil
}

// Close closes the DuckDB connection.
func (l *Loader) Close() error {
	return l.conn.Close()
}

// LoadMovies reads the movie table. Rows whose id is not an integer are
// skipped and counted in the log.
func (l *Loader) LoadMovies(ctx context.Context) ([]recommend.MovieRecord, error) {
	start := time.Now()
	source, err := l.source(ctx, l.cfg.MoviesPath, movieColumns)
	if err != nil {
		return nil, err
	}

	query := `SELECT TRY_CAST("id" AS BIGINT),
		COALESCE("title", ''), COALESCE("original_title", ''),
		COALESCE("genres", ''), COALESCE("keywords", ''), COALESCE("overview", '')
		FROM ` + source

	rows, err := l.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // close error after iteration is not actionable

	var movies []recommend.MovieRecord
	skipped := 0
	for rows.Next() {
		var id sql.NullInt64
		var m recommend.MovieRecord
		if err := rows.Scan(&id, &m.Title, &m.OriginalTitle, &m.Genres, &m.Keywords, &m.Overview); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		if !id.Valid {
			skipped++
			continue
		}
		m.ID = id.Int64
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}

	l.logLoaded("movies", l.cfg.MoviesPath, len(movies), skipped, start)
	return movies, nil
}

// LoadCredits reads the credits table. Rows whose movie_id is not an
// integer are skipped and counted in the log.
func (l *Loader) LoadCredits(ctx context.Context) ([]recommend.CreditRecord, error) {
	start := time.Now()
	source, err := l.source(ctx, l.cfg.CreditsPath, creditColumns)
	if err != nil {
		return nil, err
	}

	query := `SELECT TRY_CAST("movie_id" AS BIGINT),
		COALESCE("title", ''), COALESCE("cast", ''), COALESCE("crew", '')
		FROM ` + source

	rows, err := l.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query credits: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // close error after iteration is not actionable

	var credits []recommend.CreditRecord
	skipped := 0
	for rows.Next() {
		var id sql.NullInt64
		var c recommend.CreditRecord
		if err := rows.Scan(&id, &c.Title, &c.Cast, &c.Crew); err != nil {
			return nil, fmt.Errorf("scan credit: %w", err)
		}
		if !id.Valid {
			skipped++
			continue
		}
		c.MovieID = id.Int64
		credits = append(credits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credits: %w", err)
	}

	l.logLoaded("credits", l.cfg.CreditsPath, len(credits), skipped, start)
	return credits, nil
}

// source checks that path exists and has the required columns, and returns
// the read_csv table expression for it.
func (l *Loader) source(ctx context.Context, path string, required []string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("catalog file: %w", err)
	}

	source := readCSV(path)
	rows, err := l.conn.QueryContext(ctx, "DESCRIBE SELECT * FROM "+source)
	if err != nil {
		return "", fmt.Errorf("describe %s: %w", path, err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // close error after iteration is not actionable

	cols, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("describe %s: %w", path, err)
	}

	present := make(map[string]bool)
	for rows.Next() {
		// DESCRIBE yields column_name first; the rest is ignored.
		vals := make([]any, len(cols))
		var name string
		vals[0] = &name
		for i := 1; i < len(vals); i++ {
			vals[i] = new(any)
		}
		if err := rows.Scan(vals...); err != nil {
			return "", fmt.Errorf("describe %s: %w", path, err)
		}
		present[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("describe %s: %w", path, err)
	}

	for _, col := range required {
		if !present[col] {
			return "", fmt.Errorf("%s: %q: %w", path, col, ErrMissingColumn)
		}
	}
	return source, nil
}

// readCSV returns a read_csv call for path with every column read as text.
func readCSV(path string) string {
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	return "read_csv(" + quoted + `, header = true, all_varchar = true, delim = ',', quote = '"', escape = '"')`
}

func (l *Loader) logLoaded(table, path string, rows, skipped int, start time.Time) {
	event := l.logger.Info()
	if skipped > 0 {
		event = l.logger.Warn()
	}
	event.
		Str("table", table).
		Str("path", path).
		Int("rows", rows).
		Int("skipped_invalid_id", skipped).
		Dur("duration", time.Since(start)).
		Msg("catalog table loaded")
}
