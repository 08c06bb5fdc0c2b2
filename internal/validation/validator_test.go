// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type startRequest struct {
	ContentKey string `validate:"required,contentkey"`
	AgeGroup   string `validate:"omitempty,agegroup"`
	Limit      int    `validate:"min=1,max=50"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     startRequest
		wantErr   bool
		wantField string
		wantTag   string
	}{
		{"valid", startRequest{ContentKey: "empathy-test", AgeGroup: "20s", Limit: 5}, false, "", ""},
		{"underscore key", startRequest{ContentKey: "love_language", Limit: 1}, false, "", ""},
		{"missing key", startRequest{Limit: 5}, true, "ContentKey", "required"},
		{"uppercase key", startRequest{ContentKey: "Empathy", Limit: 5}, true, "ContentKey", "contentkey"},
		{"trailing dash", startRequest{ContentKey: "empathy-", Limit: 5}, true, "ContentKey", "contentkey"},
		{"bad age group", startRequest{ContentKey: "a", AgeGroup: "twenties", Limit: 5}, true, "AgeGroup", "agegroup"},
		{"zero decade", startRequest{ContentKey: "a", AgeGroup: "0s", Limit: 5}, true, "AgeGroup", "agegroup"},
		{"limit too large", startRequest{ContentKey: "a", Limit: 51}, true, "Limit", "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verr := ValidateStruct(&tt.input)
			if (verr != nil) != tt.wantErr {
				t.Fatalf("ValidateStruct() error = %v, wantErr %v", verr, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error = (%s, %s), want (%s, %s)", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestValidateVar_Level(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"high", "medium", "low"} {
		if err := ValidateVar(v, "level"); err != nil {
			t.Errorf("ValidateVar(%q) error = %v", v, err)
		}
	}
	if err := ValidateVar("extreme", "level"); err == nil {
		t.Error("ValidateVar(extreme) = nil, want error")
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	single := ValidateStruct(&startRequest{Limit: 5})
	apiErr := single.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "ContentKey is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "ContentKey" {
		t.Errorf("Details[field] = %v, want ContentKey", apiErr.Details["field"])
	}

	multi := ValidateStruct(&startRequest{AgeGroup: "x", Limit: 0}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("Details[fields] = %v, want 3 entries", multi.Details["fields"])
	}
	if !strings.Contains(multi.Message, "Limit: Limit must be at least 1") {
		t.Errorf("Message = %q, missing Limit entry", multi.Message)
	}
}

func TestRequestValidationError_Empty(t *testing.T) {
	t.Parallel()

	ve := &RequestValidationError{}
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q", ve.Error())
	}
	if ve.ToAPIError().Message != "Validation failed" {
		t.Errorf("ToAPIError().Message = %q", ve.ToAPIError().Message)
	}
}
