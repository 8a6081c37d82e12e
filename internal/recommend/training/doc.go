// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package training builds and persists recommendation models.

A Trainer runs the offline pipeline in named stages:

	load        read movies and credits from a CatalogSource
	features    join, filter and tag the catalog (features.Builder)
	vocabulary  fit the term vocabulary (similarity.Vectorizer)
	vectorize   turn every tag string into a sparse count vector
	matrix      compute all-pairs cosine similarity (similarity.BuildMatrix)
	persist     save the model and prune old versions (storage.ArtifactStore)

Per-record problems in the catalog are counted and skipped. Any other stage
failure aborts the run and nothing is saved. Each stage's duration is
exported as a Prometheus histogram and logged at debug level.

Only one run may be active per Trainer; a concurrent Run returns
ErrTrainingInProgress instead of queueing. Runs are bounded by the
configured training timeout.
*/
package training
