// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package services adapts long-running components to suture.Service.
//
// HTTPServerService binds the API listener, serves an *http.Server on it and
// drains in-flight requests when the supervisor stops. ModelService keeps the recommendation engine serving
// the newest stored model, training one on startup when configured to.
package services
