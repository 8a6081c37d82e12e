// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package api provides the HTTP interface of Cinematch.

Routes (all JSON, wrapped in the APIResponse envelope):

	GET  /api/v1/recommendations?title=&k=   fuzzy-resolve title, top-k similar movies
	GET  /api/v1/movies/resolve?title=&limit= ranked fuzzy matches with scores
	GET  /api/v1/movies?offset=&limit=        page through the served catalog
	GET  /api/v1/status                       model, query counters, last training run
	POST /api/v1/model/train                  start a background training run
	GET  /api/v1/health/live                  liveness
	GET  /api/v1/health/ready                 readiness (503 until a model is loaded)
	GET  /metrics                             Prometheus

Domain errors map to status codes in errors.go: no match is 404, no model
loaded is 503, invalid parameters are 400 and a training run already in
progress is 409. Anything else, including an unknown movie, is a 500.

Query parameters are validated with go-playground/validator through the
validation package; rate limiting uses go-chi/httprate keyed by client IP.
*/
package api
