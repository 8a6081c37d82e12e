// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package recommend implements content-based movie recommendations.
//
// # Architecture
//
// A movie is described by a bag of stemmed terms built from its genres, top
// billed cast, keywords, director and plot overview. Every movie's terms are
// counted against a shared vocabulary and all pairs of count vectors are
// compared by cosine similarity. The resulting matrix answers "more like
// this" queries by a single row scan.
//
// The work is split across subpackages:
//
//   - features: raw catalog records to tag strings
//   - similarity: vocabulary fitting, vectorization, matrix construction
//   - matching: fuzzy resolution of free-text titles
//   - storage: versioned persistence of trained models
//   - training: the offline job wiring the above together
//
// This package holds the shared data model, the typed errors and the query
// Engine.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, matching.NewMatcher(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := engine.Load(model); err != nil {
//	    return err
//	}
//
//	resp, err := engine.Recommend(ctx, "The Dark Knigt", 5)
//	switch {
//	case errors.Is(err, recommend.ErrNoMatchFound):
//	    // nothing resembling the query
//	case err != nil:
//	    return err
//	}
//	fmt.Println(resp.Match.Title, resp.Titles())
//
// # Thread Safety
//
// The Engine is safe for concurrent use. A model is immutable once loaded;
// Load swaps the served model atomically, so queries never block on each
// other or on reloads.
//
// # Determinism
//
// Training and querying are deterministic: vocabulary selection breaks
// frequency ties by first occurrence, and recommendations break score ties
// by ascending catalog row.
package recommend
