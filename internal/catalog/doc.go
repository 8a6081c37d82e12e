// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package catalog loads the raw movie and credits tables from CSV files.
//
// The files follow the public TMDB 5000 layout: a movies table keyed by id
// and a credits table keyed by movie_id, both carrying the title used for
// joining. List-valued columns (genres, keywords, cast, crew) hold JSON text
// and are passed through untouched for the feature builder to decode.
//
// Reading goes through an embedded in-memory DuckDB using read_csv, which
// handles quoted multi-line fields and large files without loading them
// through Go's csv package. Files are checked for their required columns
// before any rows are read.
package catalog
