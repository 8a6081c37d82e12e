// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package validation

import (
	"strings"
	"testing"
)

type titleQuery struct {
	Title  string `query:"title" validate:"required,notblank,max=20"`
	K      int    `query:"k" validate:"min=1,max=50"`
	Offset int    `json:"offset" validate:"gte=0"`
	Sort   string `validate:"omitempty,oneof=title id"`
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return the same non-nil instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input titleQuery
	}{
		{"minimal", titleQuery{Title: "Avatar", K: 1}},
		{"upper bounds", titleQuery{Title: strings.Repeat("a", 20), K: 50, Offset: 100}},
		{"with sort", titleQuery{Title: "Alien", K: 5, Sort: "id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     titleQuery
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"missing title", titleQuery{K: 5}, "title", "required", "title is required"},
		{"blank title", titleQuery{Title: "   ", K: 5}, "title", "notblank", "title must not be blank"},
		{"long title", titleQuery{Title: strings.Repeat("a", 21), K: 5}, "title", "max", "title must be at most 20 characters"},
		{"k zero", titleQuery{Title: "Alien", K: 0}, "k", "min", "k must be at least 1"},
		{"k too large", titleQuery{Title: "Alien", K: 51}, "k", "max", "k must be at most 50"},
		{"negative offset", titleQuery{Title: "Alien", K: 1, Offset: -1}, "offset", "gte", "offset must be greater than or equal to 0"},
		{"bad sort", titleQuery{Title: "Alien", K: 1, Sort: "year"}, "Sort", "oneof", "Sort must be one of: title id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if verr == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestRequestValidationError_Details(t *testing.T) {
	single := ValidateStruct(&titleQuery{K: 1})
	if single == nil {
		t.Fatal("expected error")
	}
	if got := single.Details()["field"]; got != "title" {
		t.Errorf("single Details()[field] = %v, want title", got)
	}

	multi := ValidateStruct(&titleQuery{K: 0})
	if multi == nil {
		t.Fatal("expected error")
	}
	fields, ok := multi.Details()["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("multi Details()[fields] = %v, want 2 entries", multi.Details())
	}
	if !strings.Contains(multi.Error(), "; ") {
		t.Errorf("combined Error() = %q, want messages joined by '; '", multi.Error())
	}
}

func TestRequestValidationError_Empty(t *testing.T) {
	ve := &RequestValidationError{}
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q", ve.Error())
	}
}
