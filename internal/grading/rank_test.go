package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankCohort(t *testing.T) {
	members := []CohortMember{
		{StudentID: "1", Score: floatPtr(90)},
		{StudentID: "2", Score: floatPtr(80)},
		{StudentID: "3"},
		{StudentID: "4", Score: floatPtr(90)},
	}

	ranked := RankCohort(members)
	require.Len(t, ranked, 4)

	// Graded cohort has n=3; ties keep input order and are not collapsed.
	assert.Equal(t, "1", ranked[0].StudentID)
	assert.Equal(t, 1, *ranked[0].Rank)
	assert.InDelta(t, 100.0, *ranked[0].Percentile, 1e-9)

	assert.Equal(t, "4", ranked[1].StudentID)
	assert.Equal(t, 2, *ranked[1].Rank)
	assert.InDelta(t, float64(3-2+1)/3*100, *ranked[1].Percentile, 1e-9)

	assert.Equal(t, "2", ranked[2].StudentID)
	assert.Equal(t, 3, *ranked[2].Rank)
	assert.InDelta(t, float64(1)/3*100, *ranked[2].Percentile, 1e-9)

	// Ungraded students trail with nil rank, never a "last" rank.
	assert.Equal(t, "3", ranked[3].StudentID)
	assert.Nil(t, ranked[3].Rank)
	assert.Nil(t, ranked[3].Percentile)
}

func TestRankCohortEmpty(t *testing.T) {
	assert.Empty(t, RankCohort(nil))
}

func TestRankCohortAllUngraded(t *testing.T) {
	ranked := RankCohort([]CohortMember{{StudentID: "a"}, {StudentID: "b"}})
	require.Len(t, ranked, 2)
	for _, r := range ranked {
		assert.Nil(t, r.Rank)
		assert.Nil(t, r.Percentile)
	}
}

func TestRankCohortSingleStudent(t *testing.T) {
	ranked := RankCohort([]CohortMember{{StudentID: "solo", Score: floatPtr(42)}})
	require.Len(t, ranked, 1)
	assert.Equal(t, 1, *ranked[0].Rank)
	assert.InDelta(t, 100.0, *ranked[0].Percentile, 1e-9)
}

func TestRankCohortIdempotent(t *testing.T) {
	members := []CohortMember{
		{StudentID: "x", Score: floatPtr(55.5)},
		{StudentID: "y", Score: floatPtr(71.25)},
	}
	first := RankCohort(members)
	second := RankCohort(members)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].StudentID, second[i].StudentID)
		assert.Equal(t, *first[i].Rank, *second[i].Rank)
		assert.Equal(t, *first[i].Percentile, *second[i].Percentile)
	}
}
