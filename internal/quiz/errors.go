// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package quiz

import (
	"errors"

	"github.com/tomtom215/quizcore/internal/content"
	"github.com/tomtom215/quizcore/internal/scoring"
)

// Session errors
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionFinished   = errors.New("all questions answered")
	ErrSessionIncomplete = errors.New("session has unanswered questions")
	ErrInvalidAnswer     = errors.New("invalid answer index")
	ErrNothingToUndo     = scoring.ErrNothingToUndo
	ErrUnknownContent    = content.ErrUnknownContent
)
