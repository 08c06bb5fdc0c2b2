// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/quizcore/internal/recommend"
	"github.com/tomtom215/quizcore/internal/validation"
)

const (
	// maxBodyBytes caps request bodies.
	maxBodyBytes = 1 << 20

	defaultPopularLimit = 10
	maxPopularLimit     = 100

	// userIDTag is applied to user IDs taken from the path.
	userIDTag = "required,max=128,excludes=:"
)

// AnswerRequest records one answer. A pointer distinguishes a missing
// index from index 0.
type AnswerRequest struct {
	AnswerIndex *int `json:"answer_index" validate:"required,gte=0"`
}

// DemographicQuery is a demographic bucket as supplied by a client. Both
// parts are optional; unknown buckets fall back to the aggregate.
type DemographicQuery struct {
	AgeGroup string `json:"age_group" validate:"omitempty,agegroup|eq=any"`
	Gender   string `json:"gender" validate:"omitempty,oneof=female male other any"`
}

// Demographic converts the query into the recommender's form.
func (q DemographicQuery) Demographic() recommend.Demographic {
	return recommend.Demographic{AgeGroup: q.AgeGroup, Gender: q.Gender}
}

// DemographicUpdateRequest moves a user from one bucket to another.
type DemographicUpdateRequest struct {
	Previous DemographicQuery `json:"previous"`
	Current  DemographicQuery `json:"current"`
}

// decodeJSON reads a single JSON object from the body into v. Unknown
// fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// decodeAndValidate decodes the body into v and validates it, writing a
// 400 envelope on failure. It reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeJSON(w, r, v); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), err)
		return false
	}
	return validateRequest(w, r, v)
}

// validateRequest validates v with go-playground/validator and writes a
// VALIDATION_ERROR envelope on failure.
func validateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	respondAPIError(w, r, http.StatusBadRequest, &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	})
	return false
}

// validateUserID checks a user ID taken from the URL path.
func validateUserID(w http.ResponseWriter, r *http.Request, userID string) bool {
	if err := validation.ValidateVar(userID, userIDTag); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "user ID must be 1-128 characters without ':'", nil)
		return false
	}
	return true
}

// parseDemographicQuery reads age_group and gender from the query string.
func parseDemographicQuery(w http.ResponseWriter, r *http.Request) (recommend.Demographic, bool) {
	q := DemographicQuery{
		AgeGroup: r.URL.Query().Get("age_group"),
		Gender:   r.URL.Query().Get("gender"),
	}
	if !validateRequest(w, r, &q) {
		return recommend.Demographic{}, false
	}
	return q.Demographic(), true
}

// parseLimit reads the limit query parameter within [1, maxPopularLimit].
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultPopularLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxPopularLimit {
		respondError(w, r, http.StatusBadRequest, CodeValidation,
			fmt.Sprintf("limit must be an integer between 1 and %d", maxPopularLimit), nil)
		return 0, false
	}
	return limit, true
}

// parseBool reads a boolean query parameter. Missing or malformed values
// are false.
func parseBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
