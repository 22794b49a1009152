package grading

import "sort"

// CohortMember is one student considered for ranking.
type CohortMember struct {
	StudentID string
	Score     *float64
}

// RankedStudent is a cohort member with its assigned rank and percentile.
// Students without a score keep nil Rank and Percentile; callers render
// those as "N/A".
type RankedStudent struct {
	StudentID  string
	Score      *float64
	Rank       *int
	Percentile *float64
}

// RankCohort orders a cohort by overall score descending and assigns dense
// 1-based ranks. Ties are not collapsed: equal scores receive consecutive
// distinct ranks in input order (the sort is stable, and stable input order
// is the documented tie-break). Percentiles are computed against the number
// of graded students only, as (n - rank + 1) / n * 100.
//
// Ungraded members are appended after the graded block with nil rank and
// percentile; they are never given a trailing "last" rank.
func RankCohort(members []CohortMember) []RankedStudent {
	graded := make([]CohortMember, 0, len(members))
	ungraded := make([]CohortMember, 0)
	for _, member := range members {
		if member.Score == nil {
			ungraded = append(ungraded, member)
			continue
		}
		graded = append(graded, member)
	}

	sort.SliceStable(graded, func(i, j int) bool {
		return *graded[i].Score > *graded[j].Score
	})

	n := len(graded)
	result := make([]RankedStudent, 0, len(members))
	for i, member := range graded {
		rank := i + 1
		percentile := float64(n-rank+1) / float64(n) * 100
		result = append(result, RankedStudent{
			StudentID:  member.StudentID,
			Score:      member.Score,
			Rank:       &rank,
			Percentile: &percentile,
		})
	}
	for _, member := range ungraded {
		result = append(result, RankedStudent{StudentID: member.StudentID})
	}
	return result
}
