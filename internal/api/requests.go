// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/cinematch/internal/validation"
)

// Defaults for optional query parameters.
const (
	defaultSuggestions = 5
	defaultPageSize    = 50
)

// RecommendRequest is the query of GET /api/v1/recommendations.
// K of zero means the configured default.
type RecommendRequest struct {
	Title string `query:"title" validate:"required,notblank,max=500"`
	K     int    `query:"k" validate:"gte=0"`
}

// ResolveRequest is the query of GET /api/v1/movies/resolve.
type ResolveRequest struct {
	Title string `query:"title" validate:"required,notblank,max=500"`
	Limit int    `query:"limit" validate:"min=1,max=25"`
}

// ListMoviesRequest is the query of GET /api/v1/movies.
type ListMoviesRequest struct {
	Offset int `query:"offset" validate:"gte=0"`
	Limit  int `query:"limit" validate:"min=1,max=500"`
}

// paramError reports a query parameter that is not a valid integer.
type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s must be an integer, got %q", e.name, e.value)
}

// intParam parses an optional integer query parameter.
func intParam(q url.Values, name string, fallback int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, value: raw}
	}
	return v, nil
}

// parseRecommendRequest reads and validates the recommendation query.
// maxK is the configured upper bound for k.
func parseRecommendRequest(r *http.Request, maxK int) (*RecommendRequest, error) {
	q := r.URL.Query()
	k, err := intParam(q, "k", 0)
	if err != nil {
		return nil, err
	}

	req := &RecommendRequest{Title: q.Get("title"), K: k}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	if req.K > maxK {
		return nil, &limitError{name: "k", max: maxK, got: req.K}
	}
	return req, nil
}

// parseResolveRequest reads and validates the title resolution query.
func parseResolveRequest(r *http.Request) (*ResolveRequest, error) {
	q := r.URL.Query()
	limit, err := intParam(q, "limit", defaultSuggestions)
	if err != nil {
		return nil, err
	}

	req := &ResolveRequest{Title: q.Get("title"), Limit: limit}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

// parseListMoviesRequest reads and validates catalog pagination.
func parseListMoviesRequest(r *http.Request) (*ListMoviesRequest, error) {
	q := r.URL.Query()
	offset, err := intParam(q, "offset", 0)
	if err != nil {
		return nil, err
	}
	limit, err := intParam(q, "limit", defaultPageSize)
	if err != nil {
		return nil, err
	}

	req := &ListMoviesRequest{Offset: offset, Limit: limit}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

// limitError reports a value above a configured limit.
type limitError struct {
	name string
	max  int
	got  int
}

func (e *limitError) Error() string {
	return fmt.Sprintf("%s must be at most %d", e.name, e.max)
}

// writeRequestError renders a request parsing or validation failure as 400.
func writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	switch e := err.(type) {
	case *validation.RequestValidationError:
		rw.ValidationError(e.Error(), e.Details())
	case *limitError:
		rw.ValidationError(e.Error(), map[string]interface{}{
			"field": e.name,
			"tag":   "max",
			"value": e.got,
		})
	default:
		rw.BadRequest(err.Error())
	}
}
