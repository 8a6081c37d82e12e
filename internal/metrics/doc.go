// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package metrics provides Prometheus instrumentation for Cinematch.

Collectors are registered on the default registry at package init through
promauto and exposed by the API server at /metrics. Callers use the Record*
helpers rather than touching collectors directly.

# Metric Families

  - cinematch_query_*: recommendation and resolution latency, cache lookups, match scores
  - cinematch_model_*: version, size and load count of the served model
  - cinematch_training_*: per-stage durations, run outcomes, last success
  - cinematch_catalog_records: per-outcome record counts of the last training run
  - cinematch_store_*: artifact store latency and failures per backend
  - api_*: HTTP request counts, latency and in-flight requests
*/
package metrics
