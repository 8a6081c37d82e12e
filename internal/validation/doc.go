// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide because it caches
// struct metadata. Field names in errors come from the query or json tag so
// that messages match what the client sent, and a notblank rule rejects
// whitespace-only strings.
//
//	type RecommendRequest struct {
//	    Title string `query:"title" validate:"required,notblank,max=500"`
//	    K     int    `query:"k" validate:"min=1,max=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    // verr.Error() and verr.Details() feed the 400 response
//	}
package validation
