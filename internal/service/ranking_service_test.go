package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/models"
	appErrors "github.com/sekolahku/gradebook-api/pkg/errors"
)

type stubGradebookBuilder struct {
	gradebook *models.ClassGradebook
	calls     int
}

func (s *stubGradebookBuilder) ClassGradebook(ctx context.Context, classID, termID string) (*models.ClassGradebook, error) {
	s.calls++
	return s.gradebook, nil
}

type memoryCacheRepo struct {
	values map[string]interface{}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if value, ok := m.values[key]; ok {
		if ranking, ok := dest.(*models.ClassRanking); ok {
			*ranking = *value.(*models.ClassRanking)
			return nil
		}
	}
	return appErrors.ErrCacheMiss
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string]interface{})
	}
	m.values[key] = value
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.values = make(map[string]interface{})
	return nil
}

func rankingFixtureGradebook() *models.ClassGradebook {
	return &models.ClassGradebook{
		ClassID: "class",
		TermID:  "term",
		Students: []models.GradebookRow{
			{StudentID: "stu1", StudentName: "Andi", OverallScore: ptrFloat(92), OverallLetterGrade: "A"},
			{StudentID: "stu2", StudentName: "Budi", OverallScore: ptrFloat(85), OverallLetterGrade: "B"},
			{StudentID: "stu3", StudentName: "Citra", OverallScore: ptrFloat(85), OverallLetterGrade: "B"},
			{StudentID: "stu4", StudentName: "Dewi", OverallScore: nil, OverallLetterGrade: "N/A"},
		},
	}
}

func TestClassRankingsDenseTies(t *testing.T) {
	builder := &stubGradebookBuilder{gradebook: rankingFixtureGradebook()}
	svc := NewRankingService(builder, nil, nil, zap.NewNop())

	ranking, fromCache, err := svc.ClassRankings(context.Background(), "class", "term")
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 3, ranking.GradedCount)
	assert.Equal(t, 4, ranking.TotalCount)
	require.Len(t, ranking.Students, 4)

	first := ranking.Students[0]
	assert.Equal(t, "stu1", first.StudentID)
	require.NotNil(t, first.Rank)
	assert.Equal(t, 1, *first.Rank)
	require.NotNil(t, first.Percentile)
	assert.InDelta(t, 100.0, *first.Percentile, 1e-9)

	// tied students keep distinct consecutive ranks in stable input order
	second, third := ranking.Students[1], ranking.Students[2]
	assert.Equal(t, "stu2", second.StudentID)
	assert.Equal(t, 2, *second.Rank)
	assert.Equal(t, "stu3", third.StudentID)
	assert.Equal(t, 3, *third.Rank)

	last := ranking.Students[3]
	assert.Equal(t, "stu4", last.StudentID)
	assert.Nil(t, last.Rank)
	assert.Nil(t, last.Percentile)
	assert.Equal(t, "N/A", last.LetterGrade)
}

func TestClassRankingsServedFromCache(t *testing.T) {
	builder := &stubGradebookBuilder{gradebook: rankingFixtureGradebook()}
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewRankingService(builder, cache, nil, zap.NewNop())

	_, fromCache, err := svc.ClassRankings(context.Background(), "class", "term")
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 1, builder.calls)

	ranking, fromCache, err := svc.ClassRankings(context.Background(), "class", "term")
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, 1, builder.calls)
	assert.Equal(t, 3, ranking.GradedCount)
}

func TestDistributionStats(t *testing.T) {
	builder := &stubGradebookBuilder{gradebook: rankingFixtureGradebook()}
	svc := NewRankingService(builder, nil, nil, zap.NewNop())

	distribution, err := svc.Distribution(context.Background(), "class", "term")
	require.NoError(t, err)
	assert.Equal(t, 3, distribution.GradedCount)
	assert.Equal(t, 4, distribution.TotalCount)
	require.NotNil(t, distribution.Min)
	assert.InDelta(t, 85.0, *distribution.Min, 1e-9)
	require.NotNil(t, distribution.Max)
	assert.InDelta(t, 92.0, *distribution.Max, 1e-9)
	require.NotNil(t, distribution.Mean)
	assert.InDelta(t, 87.333333, *distribution.Mean, 1e-4)
	require.NotNil(t, distribution.Median)
	assert.InDelta(t, 85.0, *distribution.Median, 1e-9)
	assert.Equal(t, 2, distribution.LetterCounts["B"])
	assert.Equal(t, 1, distribution.LetterCounts["N/A"])
}

func TestDistributionEmptyCohort(t *testing.T) {
	builder := &stubGradebookBuilder{gradebook: &models.ClassGradebook{ClassID: "class", TermID: "term"}}
	svc := NewRankingService(builder, nil, nil, zap.NewNop())

	distribution, err := svc.Distribution(context.Background(), "class", "term")
	require.NoError(t, err)
	assert.Equal(t, 0, distribution.GradedCount)
	assert.Nil(t, distribution.Mean)
	assert.Nil(t, distribution.StdDev)
}
