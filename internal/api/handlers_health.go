// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"
)

// HealthLive handles liveness check requests.
// Returns 200 OK if the process is alive, regardless of model state.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness check requests.
// Returns 200 OK only once a model is loaded, 503 before that.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.engine.Ready()
	status := h.engine.Status()

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	data := map[string]interface{}{
		"ready":         ready,
		"model_version": status.ModelVersion,
		"movie_count":   status.MovieCount,
		"uptime":        time.Since(h.startTime).Seconds(),
	}
	if h.trainer != nil {
		data["training"] = h.trainer.Status().IsTraining
	}

	NewResponseWriter(w, r).StatusWithData(statusCode, data)
}
