package service

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/grading"
	"github.com/sekolahku/gradebook-api/internal/models"
)

type gradebookBuilder interface {
	ClassGradebook(ctx context.Context, classID, termID string) (*models.ClassGradebook, error)
}

// RankingService orders cohorts by overall score and summarises their
// distribution. Computed rankings may be cached in Redis; the cache is
// invalidated whenever score entries for the class change.
type RankingService struct {
	gradebook gradebookBuilder
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewRankingService constructs RankingService.
func NewRankingService(gradebook gradebookBuilder, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{gradebook: gradebook, cache: cache, metrics: metrics, logger: logger}
}

// RankingCacheKey builds the cache key for a class+term ranking. Score
// writes invalidate with RankingCachePattern.
func RankingCacheKey(classID, termID string) string {
	return fmt.Sprintf("rankings:%s:%s", classID, termID)
}

// RankingCachePattern matches every cached ranking artifact for a class+term.
func RankingCachePattern(classID, termID string) string {
	return fmt.Sprintf("rankings:%s:%s*", classID, termID)
}

// ClassRankings returns the ranked cohort for a class and term. The boolean
// indicates whether the result came from cache.
func (s *RankingService) ClassRankings(ctx context.Context, classID, termID string) (*models.ClassRanking, bool, error) {
	cacheKey := RankingCacheKey(classID, termID)
	if s.cache != nil {
		var cached models.ClassRanking
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			s.metrics.RecordRankingServed(true)
			return &cached, true, nil
		}
	}

	start := time.Now()
	gradebook, err := s.gradebook.ClassGradebook(ctx, classID, termID)
	if err != nil {
		return nil, false, err
	}
	s.metrics.ObserveGradebookBuild(time.Since(start))

	members := make([]grading.CohortMember, 0, len(gradebook.Students))
	rowsByStudent := make(map[string]models.GradebookRow, len(gradebook.Students))
	for _, row := range gradebook.Students {
		members = append(members, grading.CohortMember{StudentID: row.StudentID, Score: row.OverallScore})
		rowsByStudent[row.StudentID] = row
	}
	ranked := grading.RankCohort(members)

	ranking := &models.ClassRanking{
		ClassID:     classID,
		TermID:      termID,
		TotalCount:  len(ranked),
		GeneratedAt: time.Now().UTC(),
		Students:    make([]models.ClassRankingRow, 0, len(ranked)),
	}
	for _, r := range ranked {
		row := rowsByStudent[r.StudentID]
		if r.Rank != nil {
			ranking.GradedCount++
		}
		ranking.Students = append(ranking.Students, models.ClassRankingRow{
			StudentID:    r.StudentID,
			StudentName:  row.StudentName,
			OverallScore: r.Score,
			LetterGrade:  row.OverallLetterGrade,
			Rank:         r.Rank,
			Percentile:   r.Percentile,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, ranking, 0); err != nil {
			s.logger.Warn("cache rankings", zap.Error(err))
		}
	}
	s.metrics.RecordRankingServed(false)
	return ranking, false, nil
}

// Distribution summarises overall score statistics for the cohort. Students
// without a computable overall score are excluded from the statistics but
// reflected in TotalCount.
func (s *RankingService) Distribution(ctx context.Context, classID, termID string) (*models.ClassDistribution, error) {
	gradebook, err := s.gradebook.ClassGradebook(ctx, classID, termID)
	if err != nil {
		return nil, err
	}

	scores := make(stats.Float64Data, 0, len(gradebook.Students))
	letterCounts := make(map[string]int)
	for _, row := range gradebook.Students {
		letterCounts[row.OverallLetterGrade]++
		if row.OverallScore != nil {
			scores = append(scores, *row.OverallScore)
		}
	}

	distribution := &models.ClassDistribution{
		ClassID:      classID,
		TermID:       termID,
		GradedCount:  len(scores),
		TotalCount:   len(gradebook.Students),
		LetterCounts: letterCounts,
	}
	if len(scores) == 0 {
		return distribution, nil
	}

	if min, err := scores.Min(); err == nil {
		distribution.Min = &min
	}
	if max, err := scores.Max(); err == nil {
		distribution.Max = &max
	}
	if mean, err := scores.Mean(); err == nil {
		distribution.Mean = &mean
	}
	if median, err := scores.Median(); err == nil {
		distribution.Median = &median
	}
	if stdDev, err := scores.StandardDeviation(); err == nil {
		distribution.StdDev = &stdDev
	}
	return distribution, nil
}
