package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectScoreNoEntries(t *testing.T) {
	categories := []Category{{ID: "exam", Weight: 70}, {ID: "quiz", Weight: 30}}
	assert.Nil(t, SubjectScore(nil, categories))
	assert.Nil(t, SubjectScore([]ScoreEntry{}, categories))
}

func TestSubjectScoreNoMatchingCategory(t *testing.T) {
	// Entries exist but none belong to a known category: zero, not nil.
	entries := []ScoreEntry{{StudentID: "s1", SubjectID: "math", CategoryID: "homework", Score: 8, MaxScore: 10}}
	categories := []Category{{ID: "exam", Weight: 70}, {ID: "quiz", Weight: 30}}
	score := SubjectScore(entries, categories)
	require.NotNil(t, score)
	assert.Equal(t, 0.0, *score)
}

func TestSubjectScoreWeighted(t *testing.T) {
	entries := []ScoreEntry{
		{StudentID: "s1", SubjectID: "math", CategoryID: "exam", Score: 80, MaxScore: 100},
		{StudentID: "s1", SubjectID: "math", CategoryID: "quiz", Score: 50, MaxScore: 100},
	}
	categories := []Category{{ID: "exam", Weight: 70}, {ID: "quiz", Weight: 30}}
	score := SubjectScore(entries, categories)
	require.NotNil(t, score)
	assert.InDelta(t, 71.0, *score, 1e-9)
}

func TestSubjectScorePartialContribution(t *testing.T) {
	// Only the exam category has entries; the quiz weight must not dilute.
	entries := []ScoreEntry{{StudentID: "s1", SubjectID: "math", CategoryID: "exam", Score: 80, MaxScore: 100}}
	categories := []Category{{ID: "exam", Weight: 70}, {ID: "quiz", Weight: 30}}
	score := SubjectScore(entries, categories)
	require.NotNil(t, score)
	assert.InDelta(t, 80.0, *score, 1e-9)
}

func TestSubjectScoreMultipleEntriesPerCategory(t *testing.T) {
	entries := []ScoreEntry{
		{CategoryID: "quiz", Score: 10, MaxScore: 10},
		{CategoryID: "quiz", Score: 5, MaxScore: 10},
	}
	categories := []Category{{ID: "quiz", Weight: 100}}
	score := SubjectScore(entries, categories)
	require.NotNil(t, score)
	assert.InDelta(t, 75.0, *score, 1e-9)
}

func TestSubjectScoreSkipsInvalidMaxScore(t *testing.T) {
	entries := []ScoreEntry{
		{CategoryID: "quiz", Score: 9, MaxScore: 10},
		{CategoryID: "quiz", Score: 5, MaxScore: 0},
	}
	categories := []Category{{ID: "quiz", Weight: 100}}
	score := SubjectScore(entries, categories)
	require.NotNil(t, score)
	assert.InDelta(t, 90.0, *score, 1e-9)
}

func TestSubjectScoreNormalizesWeights(t *testing.T) {
	// Weights summing to 50 normalize the same as weights summing to 100.
	entries := []ScoreEntry{
		{CategoryID: "exam", Score: 80, MaxScore: 100},
		{CategoryID: "quiz", Score: 60, MaxScore: 100},
	}
	categories := []Category{{ID: "exam", Weight: 35}, {ID: "quiz", Weight: 15}}
	score := SubjectScore(entries, categories)
	require.NotNil(t, score)
	assert.InDelta(t, (0.8*35+0.6*15)/50*100, *score, 1e-9)
}

func TestSubjectScoreBonusAbove100(t *testing.T) {
	entries := []ScoreEntry{{CategoryID: "exam", Score: 110, MaxScore: 100}}
	categories := []Category{{ID: "exam", Weight: 100}}
	score := SubjectScore(entries, categories)
	require.NotNil(t, score)
	assert.InDelta(t, 110.0, *score, 1e-9)
}

func TestOverallScoreSkipsNil(t *testing.T) {
	a, b := 85.0, 70.0
	overall := OverallScore([]*float64{&a, nil, &b})
	require.NotNil(t, overall)
	assert.InDelta(t, 77.5, *overall, 1e-9)
}

func TestOverallScoreAllNil(t *testing.T) {
	assert.Nil(t, OverallScore([]*float64{nil, nil}))
	assert.Nil(t, OverallScore(nil))
}

func TestSubjectScoreIdempotent(t *testing.T) {
	entries := []ScoreEntry{
		{CategoryID: "exam", Score: 77, MaxScore: 90},
		{CategoryID: "quiz", Score: 13, MaxScore: 20},
	}
	categories := []Category{{ID: "exam", Weight: 60}, {ID: "quiz", Weight: 40}}
	first := SubjectScore(entries, categories)
	second := SubjectScore(entries, categories)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}
