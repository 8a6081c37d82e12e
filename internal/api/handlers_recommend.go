// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/training"
)

// Recommendations handles GET /api/v1/recommendations?title=&k=
// Resolves the title fuzzily and returns the k most similar movies.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	req, err := parseRecommendRequest(r, h.maxK)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, req.Title, req.K)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("query", req.Title).
		Str("match", resp.Match.Title).
		Int("score", resp.Match.Score).
		Int("returned", len(resp.Recommendations)).
		Bool("cache_hit", resp.Metadata.CacheHit).
		Msg("Recommendations served")

	NewResponseWriter(w, r).Success(resp)
}

// ResolveTitleResponse is the body of GET /api/v1/movies/resolve.
type ResolveTitleResponse struct {
	Query   string            `json:"query"`
	Best    recommend.Match   `json:"best"`
	Matches []recommend.Match `json:"matches"`
}

// ResolveTitle handles GET /api/v1/movies/resolve?title=&limit=
// Returns the best fuzzy matches for a title with their scores, so clients
// can apply their own confidence threshold.
func (h *Handler) ResolveTitle(w http.ResponseWriter, r *http.Request) {
	req, err := parseResolveRequest(r)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	matches, err := h.engine.Suggest(r.Context(), req.Title, req.Limit)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	if len(matches) == 0 {
		writeEngineError(w, r, recommend.ErrNoMatchFound)
		return
	}

	NewResponseWriter(w, r).Success(ResolveTitleResponse{
		Query:   req.Title,
		Best:    matches[0],
		Matches: matches,
	})
}

// ListMovies handles GET /api/v1/movies?offset=&limit=
// Pages through the served catalog in model row order.
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	req, err := parseListMoviesRequest(r)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	movies, total, err := h.engine.Movies(req.Offset, req.Limit)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	NewResponseWriter(w, r).SuccessWithPagination(movies, &PaginationMeta{
		Total:   total,
		Count:   len(movies),
		Offset:  req.Offset,
		Limit:   req.Limit,
		HasMore: req.Offset+len(movies) < total,
	})
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Model    recommend.Status  `json:"model"`
	Metrics  recommend.Metrics `json:"metrics"`
	Training *training.Status  `json:"training,omitempty"`
}

// Status handles GET /api/v1/status
// Returns the served model, query counters and the last training run.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Model:   h.engine.Status(),
		Metrics: h.engine.GetMetrics(),
	}
	if h.trainer != nil {
		ts := h.trainer.Status()
		resp.Training = &ts
	}
	NewResponseWriter(w, r).Success(resp)
}

// TriggerTraining handles POST /api/v1/model/train
// Starts a training run in the background. The trained model is persisted
// and loaded by the trainer's completion hook.
func (h *Handler) TriggerTraining(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.trainer == nil {
		rw.ServiceUnavailable(ErrCodeServiceUnavailable, "Training is not available on this server")
		return
	}
	run, err := h.trainer.TryStart()
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	// The run outlives the request but keeps its request ID for logging.
	ctx := context.WithoutCancel(r.Context())
	go func() {
		start := time.Now()
		model, _, err := run(ctx)
		logger := logging.Ctx(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Triggered training failed")
		} else {
			logger.Info().
				Int("version", model.Version).
				Dur("duration", time.Since(start)).
				Msg("Triggered training completed")
		}
		if h.trainingDone != nil {
			h.trainingDone(err)
		}
	}()

	rw.Accepted(map[string]string{"message": "Training started"})
}
