// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package storage persists trained recommendation models.
//
// A model is the tag table, the vocabulary and the similarity matrix produced
// by one training run. It is stored as an Artifact: gob-encoded, gzip
// compressed and protected by a SHA-256 checksum of the uncompressed bytes.
// A model that fails verification is never returned.
//
// # Backends
//
// FileStore keeps one file per version in a directory:
//
//	{name}_v{version}.gob.gz
//
// Files are written to a temporary name and renamed into place, so readers
// only ever see complete models.
//
// BadgerStore keeps the same payload in BadgerDB, with JSON metadata under a
// separate key so listing is cheap. An empty path opens an in-memory
// database, which is what the tests use.
//
// Both implement ArtifactStore; Open selects one by name ("file" or
// "badger").
//
// # Versions
//
// Versions are positive and monotonically increasing per model name. Load
// with version 0 returns the latest. Prune keeps the newest N versions and
// deletes the rest.
//
// # Usage Example
//
//	store, err := storage.Open("file", "/data/models")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	meta, err := store.Save(ctx, "tmdb", model, storage.ModelMetadata{
//	    TrainingDurationMS: elapsed.Milliseconds(),
//	})
//
//	model, meta, err := store.Load(ctx, "tmdb", 0) // latest
//
// # Thread Safety
//
// All store operations are safe for concurrent use.
package storage
