package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestScaleLetterBoundaries(t *testing.T) {
	scale := DefaultScale()

	assert.Equal(t, "A", scale.Letter(floatPtr(95)))
	assert.Equal(t, "A", scale.Letter(floatPtr(90)))
	assert.Equal(t, "B", scale.Letter(floatPtr(80)))
	assert.Equal(t, "C", scale.Letter(floatPtr(79.999)))
	assert.Equal(t, "F", scale.Letter(floatPtr(12)))
	assert.Equal(t, "F", scale.Letter(floatPtr(0)))
}

func TestScaleLetterNilScore(t *testing.T) {
	assert.Equal(t, LetterNotAvailable, DefaultScale().Letter(nil))
}

func TestScaleLetterBelowAllThresholds(t *testing.T) {
	// No zero band: scores below every threshold get the lowest-tier letter.
	scale := NewScale([]Band{{Letter: "A", Min: 90}, {Letter: "B", Min: 80}, {Letter: "E", Min: 40}})
	assert.Equal(t, "E", scale.Letter(floatPtr(10)))
}

func TestScaleCustomLetters(t *testing.T) {
	scale := NewScale([]Band{
		{Letter: "A+", Min: 97},
		{Letter: "A", Min: 93},
		{Letter: "A-", Min: 90},
		{Letter: "B+", Min: 87},
		{Letter: "F", Min: 0},
	})
	assert.Equal(t, "A+", scale.Letter(floatPtr(98)))
	assert.Equal(t, "A-", scale.Letter(floatPtr(91.5)))
	assert.Equal(t, "B+", scale.Letter(floatPtr(87)))
	assert.Equal(t, "F", scale.Letter(floatPtr(30)))
}

func TestScaleUnorderedInput(t *testing.T) {
	scale := NewScale([]Band{{Letter: "F", Min: 0}, {Letter: "A", Min: 90}, {Letter: "C", Min: 70}})
	bands := scale.Bands()
	assert.Equal(t, "A", bands[0].Letter)
	assert.Equal(t, "F", bands[2].Letter)
	assert.Equal(t, "C", scale.Letter(floatPtr(75)))
}

func TestScaleEmpty(t *testing.T) {
	var scale Scale
	assert.True(t, scale.Empty())
	assert.Equal(t, LetterNotAvailable, scale.Letter(floatPtr(50)))
}
