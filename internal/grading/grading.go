// Package grading implements the pure score aggregation used by gradebook,
// ranking and report flows. Functions here are stateless and perform no I/O:
// identical inputs always produce identical outputs. Data-shape problems
// (missing categories, zero max score, empty cohorts) degrade to nil results
// or fallback values rather than errors.
package grading

// ScoreEntry is one recorded assessment result for a student in a subject.
type ScoreEntry struct {
	StudentID  string
	SubjectID  string
	CategoryID string
	Score      float64
	MaxScore   float64
}

// Category is a weighting bucket within a subject, e.g. Exams at weight 40.
// Weights need not sum to 100; the aggregation normalizes by the sum of
// weights that actually contribute.
type Category struct {
	ID        string
	SubjectID string
	Weight    float64
}

// SubjectScore computes the category-weighted percentage for one student in
// one subject. It returns nil when entries is empty: a student with no graded
// work is distinguishable from a student scoring zero.
//
// Each category averages the score/max ratios of its matching entries.
// Entries with a non-positive max score are excluded from the average.
// A category with no matching entries does not contribute, and its weight is
// left out of the normalization. When entries exist but none match any
// category the result is 0, not nil; this mirrors the established report
// output and is deliberate.
//
// The result is not clamped: bonus points can push a category ratio above 1
// and the subject score above 100.
func SubjectScore(entries []ScoreEntry, categories []Category) *float64 {
	if len(entries) == 0 {
		return nil
	}

	weightedSum := 0.0
	totalWeight := 0.0
	for _, category := range categories {
		ratioSum := 0.0
		counted := 0
		for _, entry := range entries {
			if entry.CategoryID != category.ID {
				continue
			}
			if entry.MaxScore <= 0 {
				continue
			}
			ratioSum += entry.Score / entry.MaxScore
			counted++
		}
		if counted == 0 {
			continue
		}
		weightedSum += (ratioSum / float64(counted)) * category.Weight
		totalWeight += category.Weight
	}

	if totalWeight == 0 {
		zero := 0.0
		return &zero
	}
	score := weightedSum / totalWeight * 100
	return &score
}

// OverallScore returns the unweighted mean of the non-nil per-subject scores.
// Every graded subject counts equally. When no subject is graded the result
// is nil and the student is excluded from ranking.
func OverallScore(subjectScores []*float64) *float64 {
	sum := 0.0
	counted := 0
	for _, score := range subjectScores {
		if score == nil {
			continue
		}
		sum += *score
		counted++
	}
	if counted == 0 {
		return nil
	}
	mean := sum / float64(counted)
	return &mean
}
