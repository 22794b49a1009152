package grading

import "sort"

// LetterNotAvailable is returned for students without a computable score.
const LetterNotAvailable = "N/A"

// Band maps a letter to the minimum percentage required to earn it.
type Band struct {
	Letter string
	Min    float64
}

// Scale is an ordered set of letter bands. Letters are evaluated from the
// highest threshold down, so arbitrary letter sets (A+/A/A- and similar) work
// without any hardcoded tier list.
type Scale struct {
	bands []Band
}

// NewScale builds a scale from letter bands. Band order in the input does not
// matter; evaluation always runs by descending threshold. Equal thresholds
// are ordered by letter for determinism.
func NewScale(bands []Band) Scale {
	sorted := make([]Band, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Min != sorted[j].Min {
			return sorted[i].Min > sorted[j].Min
		}
		return sorted[i].Letter < sorted[j].Letter
	})
	return Scale{bands: sorted}
}

// DefaultScale is the fallback used when a school has not configured a scale.
func DefaultScale() Scale {
	return NewScale([]Band{
		{Letter: "A", Min: 90},
		{Letter: "B", Min: 80},
		{Letter: "C", Min: 70},
		{Letter: "D", Min: 60},
		{Letter: "F", Min: 0},
	})
}

// Bands returns the bands in evaluation order (highest threshold first).
func (s Scale) Bands() []Band {
	out := make([]Band, len(s.bands))
	copy(out, s.bands)
	return out
}

// Empty reports whether the scale has no bands.
func (s Scale) Empty() bool {
	return len(s.bands) == 0
}

// Letter maps a score to its letter grade. A nil score yields "N/A".
// Thresholds are inclusive: a score of exactly 80 on a B:80 band earns a B.
// A score below every threshold falls through to the lowest-tier letter.
func (s Scale) Letter(score *float64) string {
	if score == nil {
		return LetterNotAvailable
	}
	if len(s.bands) == 0 {
		return LetterNotAvailable
	}
	for _, band := range s.bands {
		if *score >= band.Min {
			return band.Letter
		}
	}
	return s.bands[len(s.bands)-1].Letter
}
