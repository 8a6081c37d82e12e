// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/training"
)

// errorMapping is the HTTP rendering of a domain error.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// engineErrors is checked in order; the first errors.Is match wins.
var engineErrors = []errorMapping{
	{recommend.ErrNoMatchFound, http.StatusNotFound, ErrCodeNoMatch, "No movie matches the requested title"},
	{recommend.ErrModelNotLoaded, http.StatusServiceUnavailable, ErrCodeModelNotLoaded, "No recommendation model is loaded yet"},
	{recommend.ErrInvalidK, http.StatusBadRequest, ErrCodeBadRequest, "k must be a positive integer"},
	{training.ErrTrainingInProgress, http.StatusConflict, ErrCodeConflict, "Training is already in progress"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, ErrCodeTimeout, "The request timed out"},
}

// writeEngineError renders err from the recommendation engine. Unknown
// errors, including ErrUnknownMovie, are internal: they mean the served
// model is inconsistent and the details stay in the log.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	for _, m := range engineErrors {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				logging.Ctx(r.Context()).Warn().Err(err).Msg(m.message)
			}
			rw.Error(m.status, m.code, m.message)
			return
		}
	}

	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Recommendation request failed")
	rw.InternalError("Failed to process the request")
}
