// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package content

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/tomtom215/quizcore/internal/scoring"
)

const minimalTable = `{
  "key": "mini",
  "title": "Mini",
  "dimensions": [{"key": "a", "name": "A"}, {"key": "b", "name": "B"}],
  "questions": [
    {"dimension": "a", "text": "q1", "answers": [{"text": "yes", "weight": 4}, {"text": "no", "weight": 0}]},
    {"dimension": "b", "text": "q2", "answers": [{"text": "yes", "weight": 3}]}
  ],
  "result_labels": [
    {"key": "r1", "name": "R1", "condition": {"a": "high"}},
    {"key": "fallback", "name": "Fallback"}
  ]
}`

func TestLoadEmbedded(t *testing.T) {
	t.Parallel()

	reg, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}

	wantKeys := []string{"daily-rhythm", "decision-style", "empathy-test", "hobby-finder", "love-language"}
	if got := reg.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("Keys() = %v, want %v", got, wantKeys)
	}

	if warnings := reg.Lint(); len(warnings) != 0 {
		t.Errorf("Lint() = %v, want no warnings", warnings)
	}

	m := reg.Manifest()
	if len(m.Stages) != 3 {
		t.Errorf("len(Stages) = %d, want 3", len(m.Stages))
	}
	if len(m.StaticPopularity) != reg.Len() {
		t.Errorf("StaticPopularity has %d entries, want %d", len(m.StaticPopularity), reg.Len())
	}
}

func TestLoad_DefaultsAndIndexes(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"mini.json": {Data: []byte(minimalTable)}}
	reg, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tbl, err := reg.Get("mini")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if tbl.TestType != TestTypePersonality {
		t.Errorf("TestType = %s, want personality", tbl.TestType)
	}
	if tbl.Category != "personality" {
		t.Errorf("Category = %s, want personality", tbl.Category)
	}
	if tbl.Ceiling() != 4 {
		t.Errorf("Ceiling() = %d, want 4 (inferred)", tbl.Ceiling())
	}
	if got := tbl.DimensionKeys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("DimensionKeys() = %v", got)
	}
	if tbl.Outcomes[0].Condition["a"] != scoring.LevelHigh {
		t.Errorf("Condition[a] = %s, want high", tbl.Outcomes[0].Condition["a"])
	}
	if !tbl.Outcomes[1].IsFallback() {
		t.Error("last outcome should be a fallback")
	}
}

func TestLoad_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"key": `},
		{"missing title", `{"key": "x", "dimensions": [{"key":"a","name":"A"}], "questions": [{"dimension":"a","text":"q","answers":[{"text":"t","weight":1}]}], "result_labels": [{"key":"r","name":"R"}]}`},
		{"bad level", `{"key": "x", "title": "X", "dimensions": [{"key":"a","name":"A"}], "questions": [{"dimension":"a","text":"q","answers":[{"text":"t","weight":1}]}], "result_labels": [{"key":"r","name":"R","condition":{"a":"extreme"}}]}`},
		{"bad key", `{"key": "Not A Slug", "title": "X", "dimensions": [{"key":"a","name":"A"}], "questions": [{"dimension":"a","text":"q","answers":[{"text":"t","weight":1}]}], "result_labels": [{"key":"r","name":"R"}]}`},
		{"no questions", `{"key": "x", "title": "X", "dimensions": [{"key":"a","name":"A"}], "questions": [], "result_labels": [{"key":"r","name":"R"}]}`},
		{"negative weight", `{"key": "x", "title": "X", "dimensions": [{"key":"a","name":"A"}], "questions": [{"dimension":"a","text":"q","answers":[{"text":"t","weight":-1}]}], "result_labels": [{"key":"r","name":"R"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Load(fstest.MapFS{"x.json": {Data: []byte(tt.data)}}); err == nil {
				t.Error("Load() = nil error, want error")
			}
		})
	}
}

func TestLoad_DuplicateKey(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"a.json": {Data: []byte(minimalTable)},
		"b.json": {Data: []byte(minimalTable)},
	}
	if _, err := Load(fsys); err == nil {
		t.Error("Load() = nil error for duplicate keys, want error")
	}
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mini.json"), []byte(minimalTable), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}

	if _, err := LoadDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("LoadDir(missing) = nil error, want error")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(nil, Manifest{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Get("nope"); !errors.Is(err, ErrUnknownContent) {
		t.Errorf("Get() error = %v, want ErrUnknownContent", err)
	}
}

func TestTable_QuestionPool(t *testing.T) {
	t.Parallel()

	reg, err := LoadEmbedded()
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := reg.Get("empathy-test")
	if err != nil {
		t.Fatal(err)
	}

	if !tbl.HasDeep() {
		t.Fatal("empathy-test should have a deep pool")
	}
	if n := len(tbl.QuestionPool(false)); n != 4 {
		t.Errorf("base pool = %d, want 4", n)
	}
	if n := len(tbl.QuestionPool(true)); n != 6 {
		t.Errorf("extended pool = %d, want 6", n)
	}

	counts := tbl.QuestionCounts(true)
	if counts["empathy"] != 3 || counts["energy"] != 3 {
		t.Errorf("QuestionCounts(true) = %v", counts)
	}
}

func TestRegistry_Lint(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Key:        "broken",
		Title:      "Broken",
		Dimensions: []Dimension{{Key: "a", Name: "A"}},
		Questions: []Question{
			{Dimension: "ghost", Text: "q", Answers: []Answer{{Text: "t", Weight: 9}}},
		},
		WeightCeiling: 5,
		Outcomes: []Outcome{
			{Key: "r", Name: "R", Condition: Condition{"zzz": scoring.LevelLow}, NextContentKey: "elsewhere"},
		},
		TagMapping: TagMapping{"nope": {scoring.LevelHigh: {"calm"}}},
	}

	reg, err := NewRegistry([]*Table{tbl}, Manifest{
		CategoryRecommendations: map[string][]string{"decision": {"missing"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	warnings := reg.Lint()
	if len(warnings) != 7 {
		t.Errorf("Lint() returned %d warnings, want 7: %v", len(warnings), warnings)
	}
}
