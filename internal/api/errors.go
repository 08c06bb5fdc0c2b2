// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/quizcore/internal/quiz"
	"github.com/tomtom215/quizcore/internal/store"
)

// Error codes returned in APIError.Code.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeSessionNotFound   = "SESSION_NOT_FOUND"
	CodeContentNotFound   = "CONTENT_NOT_FOUND"
	CodeSessionFinished   = "SESSION_FINISHED"
	CodeSessionIncomplete = "SESSION_INCOMPLETE"
	CodeInvalidAnswer     = "INVALID_ANSWER"
	CodeNothingToUndo     = "NOTHING_TO_UNDO"
	CodeRateLimited       = "RATE_LIMIT_EXCEEDED"
	CodeUnavailable       = "SERVICE_UNAVAILABLE"
	CodeInternal          = "INTERNAL_ERROR"
)

// errorMapping binds a sentinel error to its HTTP representation.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{quiz.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound, "Session not found or expired"},
	{quiz.ErrUnknownContent, http.StatusNotFound, CodeContentNotFound, "Content not found"},
	{quiz.ErrSessionFinished, http.StatusConflict, CodeSessionFinished, "All questions have been answered"},
	{quiz.ErrSessionIncomplete, http.StatusConflict, CodeSessionIncomplete, "Session has unanswered questions"},
	{quiz.ErrInvalidAnswer, http.StatusBadRequest, CodeInvalidAnswer, "Answer index is out of range"},
	{quiz.ErrNothingToUndo, http.StatusConflict, CodeNothingToUndo, "No answer to undo"},
	{store.ErrInvalidUserID, http.StatusBadRequest, CodeValidation, "Invalid user ID"},
	{context.Canceled, http.StatusServiceUnavailable, CodeUnavailable, "Request cancelled"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, CodeUnavailable, "Request timed out"},
}

// classifyError returns the status, code and client message for err.
// Unrecognised errors become 500 INTERNAL_ERROR with a generic message.
func classifyError(err error) (status int, code, message string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, m.message
		}
	}
	return http.StatusInternalServerError, CodeInternal, "Internal server error"
}

// respondServiceError maps a service error onto the error envelope.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)
	respondError(w, r, status, code, message, err)
}
