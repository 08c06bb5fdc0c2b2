// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package quiz

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/quizcore/internal/content"
	"github.com/tomtom215/quizcore/internal/recommend"
	"github.com/tomtom215/quizcore/internal/scoring"
)

// Session is one user's walk through a content table.
type Session struct {
	ID          string
	UserID      string
	ContentKey  string
	Extended    bool
	Demographic recommend.Demographic
	StartedAt   time.Time

	mu        sync.Mutex
	table     *content.Table
	questions []content.Question
	acc       *scoring.Accumulator
	choices   []int
	done      bool

	// completedAt is fixed by the first Complete attempt. It keys the stored
	// record, so a retried completion overwrites instead of duplicating.
	completedAt time.Time
}

func newSession(id, userID string, t *content.Table, extended bool, d recommend.Demographic, now time.Time) *Session {
	// Extended mode only applies when the table has a deep pool.
	extended = extended && t.HasDeep()
	return &Session{
		ID:          id,
		UserID:      userID,
		ContentKey:  t.Key,
		Extended:    extended,
		Demographic: d,
		StartedAt:   now,
		table:       t,
		questions:   t.QuestionPool(extended),
		acc:         scoring.NewAccumulator(t.DimensionKeys()),
	}
}

// QuestionView is a question as shown to the user. Weights and the target
// dimension are not exposed.
type QuestionView struct {
	Index   int      `json:"index"`
	Text    string   `json:"text"`
	Answers []string `json:"answers"`
}

// Progress is the client-facing state of a session.
type Progress struct {
	SessionID  string        `json:"session_id"`
	ContentKey string        `json:"content_key"`
	Title      string        `json:"title"`
	Extended   bool          `json:"extended"`
	Position   int           `json:"position"`
	Total      int           `json:"total"`
	Finished   bool          `json:"finished"`
	Question   *QuestionView `json:"question,omitempty"`
}

// progress must be called with s.mu held.
func (s *Session) progress() Progress {
	p := Progress{
		SessionID:  s.ID,
		ContentKey: s.ContentKey,
		Title:      s.table.Title,
		Extended:   s.Extended,
		Position:   len(s.choices),
		Total:      len(s.questions),
		Finished:   len(s.choices) >= len(s.questions),
	}
	if !p.Finished {
		q := &s.questions[p.Position]
		view := &QuestionView{Index: p.Position, Text: q.Text, Answers: make([]string, len(q.Answers))}
		for i := range q.Answers {
			view.Answers[i] = q.Answers[i].Text
		}
		p.Question = view
	}
	return p
}

// answer must be called with s.mu held.
func (s *Session) answer(index int) error {
	pos := len(s.choices)
	if pos >= len(s.questions) {
		return ErrSessionFinished
	}

	q := &s.questions[pos]
	if index < 0 || index >= len(q.Answers) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidAnswer, index, len(q.Answers))
	}

	s.acc.Add(q.Dimension, q.Answers[index].Weight)
	s.choices = append(s.choices, index)
	return nil
}

// back must be called with s.mu held.
func (s *Session) back() error {
	if _, _, err := s.acc.Back(); err != nil {
		return err
	}
	s.choices = s.choices[:len(s.choices)-1]
	return nil
}
