// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package insight

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quizcore/internal/content"
	"github.com/tomtom215/quizcore/internal/scoring"
)

func testClassifier() *scoring.Classifier {
	return scoring.MustClassifier(scoring.DefaultThresholds())
}

func embeddedRegistry(t *testing.T) *content.Registry {
	t.Helper()
	reg, err := content.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	return reg
}

func TestVocabulary_Closed(t *testing.T) {
	t.Parallel()

	total := 0
	for _, c := range Categories {
		for _, tag := range Vocabulary(c) {
			got, ok := CategoryOf(tag)
			if !ok || got != c {
				t.Errorf("CategoryOf(%q) = (%s, %v), want (%s, true)", tag, got, ok, c)
			}
			total++
		}
	}
	if total != len(tagCategory) {
		t.Errorf("vocabulary union has %d tags, categories list %d", len(tagCategory), total)
	}

	for _, bogus := range []string{"", "empathy-test", "personality", "option_3", "Introvert"} {
		if IsValid(bogus) {
			t.Errorf("IsValid(%q) = true, want false", bogus)
		}
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	if c, err := ParseCategory("decision"); err != nil || c != CategoryDecision {
		t.Errorf("ParseCategory(decision) = (%s, %v)", c, err)
	}
	if _, err := ParseCategory("poll"); err == nil {
		t.Error("ParseCategory(poll) = nil error, want error")
	}
}

func TestExtractor_ExtractTags(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(embeddedRegistry(t), testClassifier(), zerolog.Nop())

	tests := []struct {
		name     string
		key      string
		scores   map[string]int
		extended bool
		want     []string
	}{
		{
			name:   "high empathy low energy",
			key:    "empathy-test",
			scores: map[string]int{"empathy": 8, "energy": 3},
			want:   []string{"empathetic", "introvert", "sensitive"},
		},
		{
			name:   "medium empathy has mapping, medium energy has none",
			key:    "empathy-test",
			scores: map[string]int{"empathy": 5, "energy": 5},
			want:   []string{"calm"},
		},
		{
			name:     "extended pool changes the denominator",
			key:      "empathy-test",
			scores:   map[string]int{"empathy": 8, "energy": 3},
			extended: true,
			want:     []string{"calm", "introvert"}, // 8/15 is medium, 3/15 is low
		},
		{
			name:   "missing dimensions classify low",
			key:    "daily-rhythm",
			scores: map[string]int{},
			want:   []string{"night_owl", "relaxed", "spontaneous"},
		},
		{
			name:   "duplicate tags across dimensions collapse",
			key:    "hobby-finder",
			scores: map[string]int{"creativity": 0, "outdoors": 0, "screens": 10},
			want:   []string{"reading", "tech"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ex.ExtractTags(tt.key, tt.scores, tt.extended)
			if err != nil {
				t.Fatalf("ExtractTags() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractor_UnknownContent(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(embeddedRegistry(t), testClassifier(), zerolog.Nop())
	if _, err := ex.ExtractTags("no-such-test", nil, false); !errors.Is(err, ErrUnknownContent) {
		t.Errorf("ExtractTags() error = %v, want ErrUnknownContent", err)
	}
}

func TestExtractor_DropsContaminatedIdentifiers(t *testing.T) {
	t.Parallel()

	tbl := &content.Table{
		Key:        "contaminated",
		Title:      "Contaminated",
		Dimensions: []content.Dimension{{Key: "a", Name: "A"}},
		Questions: []content.Question{
			{Dimension: "a", Text: "q", Answers: []content.Answer{{Text: "t", Weight: 5}}},
		},
		Outcomes: []content.Outcome{{Key: "r", Name: "R"}},
		TagMapping: content.TagMapping{
			"a": {scoring.LevelHigh: {"calm", "contaminated", "personality", "option_3", "risk_taker"}},
		},
	}
	reg, err := content.NewRegistry([]*content.Table{tbl}, content.Manifest{})
	if err != nil {
		t.Fatal(err)
	}

	ex := NewExtractor(reg, testClassifier(), zerolog.Nop())
	got, err := ex.ExtractTags("contaminated", map[string]int{"a": 5}, false)
	if err != nil {
		t.Fatalf("ExtractTags() error = %v", err)
	}

	want := []string{"calm", "risk_taker"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractTags() = %v, want %v", got, want)
	}
}

func TestExtractor_VocabularyClosure(t *testing.T) {
	t.Parallel()

	reg := embeddedRegistry(t)
	ex := NewExtractor(reg, testClassifier(), zerolog.Nop())

	for _, tbl := range reg.Tables() {
		for score := 0; score <= 15; score++ {
			scores := make(map[string]int)
			for _, dim := range tbl.DimensionKeys() {
				scores[dim] = score
			}
			for _, extended := range []bool{false, true} {
				tags, err := ex.ExtractTags(tbl.Key, scores, extended)
				if err != nil {
					t.Fatalf("ExtractTags(%s) error = %v", tbl.Key, err)
				}
				for _, tag := range tags {
					if !IsValid(tag) {
						t.Errorf("ExtractTags(%s, %d) returned %q outside the vocabulary", tbl.Key, score, tag)
					}
				}
			}
		}
	}
}

func TestExtractor_ExtractAnswered(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(embeddedRegistry(t), testClassifier(), zerolog.Nop())

	// One answered question each: 5/5 and 0/5.
	got, err := ex.ExtractAnswered("decision-style",
		map[string]int{"intuition": 5, "risk": 0, "autonomy": 3},
		map[string]int{"intuition": 1, "risk": 1, "autonomy": 1},
	)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"independent", "intuitive_decider", "risk_averse"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractAnswered() = %v, want %v", got, want)
	}
}

func TestTagHistory(t *testing.T) {
	t.Parallel()

	h := NewTagHistory("calm", "introvert")
	if added := h.Add("calm", "risk_taker", "empathy-test"); added != 1 {
		t.Errorf("Add() = %d, want 1", added)
	}

	if h.Len() != 4 {
		t.Errorf("Len() = %d, want 4", h.Len())
	}
	if h.Distinct(CategoryPersonality) != 2 {
		t.Errorf("Distinct(personality) = %d, want 2", h.Distinct(CategoryPersonality))
	}
	if h.Distinct(CategoryDecision) != 1 {
		t.Errorf("Distinct(decision) = %d, want 1", h.Distinct(CategoryDecision))
	}
	if h.Has("empathy-test") {
		t.Error("Has(empathy-test) = true, want false")
	}
	if got := h.Tags(); !reflect.DeepEqual(got, []string{"calm", "introvert", "risk_taker"}) {
		t.Errorf("Tags() = %v", got)
	}
}

func TestTagHistory_JSON(t *testing.T) {
	t.Parallel()

	h := NewTagHistory("calm", "calm", "night_owl")
	data, err := json.Marshal(h)
	if err != nil {
		t.Fatal(err)
	}

	var decoded TagHistory
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Len() != 3 || decoded.Distinct(CategoryLifestyle) != 1 {
		t.Errorf("decoded = len %d, lifestyle %d", decoded.Len(), decoded.Distinct(CategoryLifestyle))
	}

	var zero TagHistory
	if data, err := json.Marshal(&zero); err != nil || string(data) != "[]" {
		t.Errorf("Marshal(zero) = (%s, %v), want []", data, err)
	}
}

func testStages() []StageRequirement {
	return []StageRequirement{
		{Stage: 1, Name: "one", MinPerCategory: map[Category]int{CategoryPersonality: 1}},
		{Stage: 2, Name: "two", MinPerCategory: map[Category]int{
			CategoryPersonality: 2, CategoryDecision: 2, CategoryRelationship: 1, CategoryInterest: 2,
		}},
	}
}

func testRecommendations() map[string][]string {
	return map[string][]string{
		"personality":  {"empathy-test", "hobby-finder"},
		"decision":     {"decision-style"},
		"relationship": {"love-language"},
		"interest":     {"hobby-finder"},
		"lifestyle":    {"daily-rhythm"},
		"bogus":        {"nothing"},
	}
}

func TestPrioritizer_RecommendNext(t *testing.T) {
	t.Parallel()

	p := NewPrioritizer(testRecommendations(), zerolog.Nop())

	h := NewTagHistory("calm")
	got := p.RecommendNext(h, testStages(), []string{"empathy-test"})

	// personality 2-1=1, decision 2, relationship 1, interest 2.
	wantOrder := []Category{CategoryDecision, CategoryInterest, CategoryPersonality, CategoryRelationship}
	if len(got) != len(wantOrder) {
		t.Fatalf("RecommendNext() returned %d suggestions, want %d: %+v", len(got), len(wantOrder), got)
	}
	for i, c := range wantOrder {
		if got[i].Category != c {
			t.Errorf("suggestion[%d] = %s, want %s", i, got[i].Category, c)
		}
	}

	if got[0].Deficit != 2 || got[0].Required != 2 || got[0].Held != 0 {
		t.Errorf("top suggestion = %+v", got[0])
	}
	if !reflect.DeepEqual(got[0].SuggestedContentKeys, []string{"decision-style"}) {
		t.Errorf("top keys = %v", got[0].SuggestedContentKeys)
	}
	if !reflect.DeepEqual(got[2].SuggestedContentKeys, []string{"hobby-finder"}) {
		t.Errorf("personality keys = %v, want completed content excluded", got[2].SuggestedContentKeys)
	}
}

func TestPrioritizer_TieBreakPriority(t *testing.T) {
	t.Parallel()

	p := NewPrioritizer(testRecommendations(), zerolog.Nop())
	stages := []StageRequirement{{Stage: 1, MinPerCategory: map[Category]int{
		CategoryLifestyle: 1, CategoryInterest: 1, CategoryRelationship: 1, CategoryDecision: 1, CategoryPersonality: 1,
	}}}

	got := p.RecommendNext(NewTagHistory(), stages, nil)
	for i, c := range Categories {
		if got[i].Category != c {
			t.Errorf("suggestion[%d] = %s, want %s", i, got[i].Category, c)
		}
	}
}

func TestPrioritizer_UnlockedStagesIgnored(t *testing.T) {
	t.Parallel()

	p := NewPrioritizer(testRecommendations(), zerolog.Nop())
	h := NewTagHistory("calm", "introvert", "risk_taker", "independent", "caring", "tech", "music")

	if got := p.RecommendNext(h, testStages(), nil); len(got) != 0 {
		t.Errorf("RecommendNext() = %+v, want empty when every stage is unlocked", got)
	}

	// Stage 1 is unlocked, stage 2 still needs one more interest tag.
	h = NewTagHistory("calm", "introvert", "risk_taker", "independent", "caring", "tech")
	got := p.RecommendNext(h, testStages(), []string{"hobby-finder"})
	if len(got) != 1 || got[0].Category != CategoryInterest || got[0].Deficit != 1 {
		t.Fatalf("RecommendNext() = %+v, want only interest with deficit 1", got)
	}
	if len(got[0].SuggestedContentKeys) != 0 {
		t.Errorf("keys = %v, want none after completion", got[0].SuggestedContentKeys)
	}
}

func TestPrioritizer_Stages(t *testing.T) {
	t.Parallel()

	p := NewPrioritizer(nil, zerolog.Nop())
	progress := p.Stages(NewTagHistory("calm", "risk_taker"), testStages())

	if len(progress) != 2 {
		t.Fatalf("Stages() returned %d entries", len(progress))
	}
	if !progress[0].Unlocked || progress[1].Unlocked {
		t.Errorf("unlocked = (%v, %v), want (true, false)", progress[0].Unlocked, progress[1].Unlocked)
	}

	want := []CategoryProgress{
		{Category: CategoryPersonality, Held: 1, Required: 2},
		{Category: CategoryDecision, Held: 1, Required: 2},
		{Category: CategoryRelationship, Held: 0, Required: 1},
		{Category: CategoryInterest, Held: 0, Required: 2},
	}
	if !reflect.DeepEqual(progress[1].Categories, want) {
		t.Errorf("stage 2 categories = %+v, want %+v", progress[1].Categories, want)
	}
}

func TestStagesFromManifest(t *testing.T) {
	t.Parallel()

	stages := StagesFromManifest(embeddedRegistry(t).Manifest().Stages)
	if len(stages) != 3 {
		t.Fatalf("len = %d, want 3", len(stages))
	}
	if stages[2].MinPerCategory[CategoryLifestyle] != 2 {
		t.Errorf("stage 3 lifestyle = %d, want 2", stages[2].MinPerCategory[CategoryLifestyle])
	}
}
