package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/models"
	appErrors "github.com/sekolahku/gradebook-api/pkg/errors"
)

type scoreEntryRepo interface {
	List(ctx context.Context, filter models.ScoreEntryFilter) ([]models.ScoreEntry, error)
	FindByID(ctx context.Context, id string) (*models.ScoreEntry, error)
	Upsert(ctx context.Context, entry *models.ScoreEntry) error
	BulkUpsert(ctx context.Context, entries []models.ScoreEntry) error
	Delete(ctx context.Context, id string) error
}

type categoryReader interface {
	FindByID(ctx context.Context, id string) (*models.GradeCategory, error)
}

type enrollmentChecker interface {
	FindActiveByStudent(ctx context.Context, studentID, termID string) (*models.Enrollment, error)
}

// UpsertScoreRequest is a single score entry payload. MaxScore must be
// positive: rows that would divide by zero are rejected at this boundary
// before they ever reach the aggregation engine.
type UpsertScoreRequest struct {
	ID         string  `json:"id"`
	StudentID  string  `json:"student_id" validate:"required"`
	SubjectID  string  `json:"subject_id" validate:"required"`
	CategoryID string  `json:"category_id" validate:"required"`
	ClassID    string  `json:"class_id" validate:"required"`
	TermID     string  `json:"term_id" validate:"required"`
	Title      string  `json:"title"`
	Score      float64 `json:"score" validate:"gte=0"`
	MaxScore   float64 `json:"max_score" validate:"gt=0"`
}

// BulkScoreItem is one entry within a bulk payload.
type BulkScoreItem struct {
	ID         string  `json:"id"`
	StudentID  string  `json:"student_id" validate:"required"`
	SubjectID  string  `json:"subject_id" validate:"required"`
	CategoryID string  `json:"category_id" validate:"required"`
	Title      string  `json:"title"`
	Score      float64 `json:"score" validate:"gte=0"`
	MaxScore   float64 `json:"max_score" validate:"gt=0"`
}

// BulkScoresRequest handles atomic or partial score uploads.
type BulkScoresRequest struct {
	ClassID string          `json:"class_id" validate:"required"`
	TermID  string          `json:"term_id" validate:"required"`
	Mode    string          `json:"mode" validate:"omitempty,oneof=atomic partialOnError"`
	Items   []BulkScoreItem `json:"items" validate:"required,dive"`
}

// BulkScoresResult summarises partial outcomes.
type BulkScoresResult struct {
	SuccessCount int                `json:"success_count"`
	Failures     []BulkScoreFailure `json:"failures,omitempty"`
}

// BulkScoreFailure captures failed score entries.
type BulkScoreFailure struct {
	StudentID  string `json:"student_id"`
	CategoryID string `json:"category_id"`
	Reason     string `json:"reason"`
}

// ScoreService manages score entry flows and keeps derived ranking caches
// consistent with writes.
type ScoreService struct {
	entries     scoreEntryRepo
	categories  categoryReader
	enrollments enrollmentChecker
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScoreService constructs ScoreService.
func NewScoreService(entries scoreEntryRepo, categories categoryReader, enrollments enrollmentChecker, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{
		entries:     entries,
		categories:  categories,
		enrollments: enrollments,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// List returns score entries matching the filter.
func (s *ScoreService) List(ctx context.Context, filter models.ScoreEntryFilter) ([]models.ScoreEntry, error) {
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list score entries")
	}
	return entries, nil
}

// Upsert handles a single score entry.
func (s *ScoreService) Upsert(ctx context.Context, req UpsertScoreRequest) (*models.ScoreEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}
	if err := s.checkCategory(ctx, req.CategoryID, req.SubjectID); err != nil {
		return nil, err
	}
	if err := s.checkEnrollment(ctx, req.StudentID, req.ClassID, req.TermID); err != nil {
		return nil, err
	}

	entry := &models.ScoreEntry{
		ID:         req.ID,
		StudentID:  req.StudentID,
		SubjectID:  req.SubjectID,
		CategoryID: req.CategoryID,
		ClassID:    req.ClassID,
		TermID:     req.TermID,
		Title:      req.Title,
		Score:      req.Score,
		MaxScore:   req.MaxScore,
	}
	if err := s.entries.Upsert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert score entry")
	}
	s.invalidateRankings(ctx, req.ClassID, req.TermID)
	return entry, nil
}

// BulkUpsert handles bulk score submissions. In atomic mode any invalid item
// aborts the whole batch; in partialOnError mode failures are collected and
// valid items are written.
func (s *ScoreService) BulkUpsert(ctx context.Context, req BulkScoresRequest) (*BulkScoresResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}

	atomic := req.Mode == "" || req.Mode == "atomic"
	result := &BulkScoresResult{}
	var toUpsert []models.ScoreEntry
	for _, item := range req.Items {
		if err := s.checkCategory(ctx, item.CategoryID, item.SubjectID); err != nil {
			if atomic {
				return nil, err
			}
			result.Failures = append(result.Failures, BulkScoreFailure{StudentID: item.StudentID, CategoryID: item.CategoryID, Reason: err.Error()})
			continue
		}
		if err := s.checkEnrollment(ctx, item.StudentID, req.ClassID, req.TermID); err != nil {
			if atomic {
				return nil, err
			}
			result.Failures = append(result.Failures, BulkScoreFailure{StudentID: item.StudentID, CategoryID: item.CategoryID, Reason: err.Error()})
			continue
		}
		entry := models.ScoreEntry{
			ID:         item.ID,
			StudentID:  item.StudentID,
			SubjectID:  item.SubjectID,
			CategoryID: item.CategoryID,
			ClassID:    req.ClassID,
			TermID:     req.TermID,
			Title:      item.Title,
			Score:      item.Score,
			MaxScore:   item.MaxScore,
		}
		if atomic {
			toUpsert = append(toUpsert, entry)
			continue
		}
		if err := s.entries.Upsert(ctx, &entry); err != nil {
			result.Failures = append(result.Failures, BulkScoreFailure{StudentID: item.StudentID, CategoryID: item.CategoryID, Reason: err.Error()})
			continue
		}
		result.SuccessCount++
	}

	if atomic {
		if err := s.entries.BulkUpsert(ctx, toUpsert); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk upsert score entries")
		}
		result.SuccessCount = len(toUpsert)
	}
	if result.SuccessCount > 0 {
		s.invalidateRankings(ctx, req.ClassID, req.TermID)
	}
	return result, nil
}

// Delete removes a score entry and invalidates derived caches for its scope.
func (s *ScoreService) Delete(ctx context.Context, id string) error {
	target, err := s.entries.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "score entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load score entry")
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete score entry")
	}
	s.invalidateRankings(ctx, target.ClassID, target.TermID)
	return nil
}

func (s *ScoreService) checkCategory(ctx context.Context, categoryID, subjectID string) error {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, "unknown grade category")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade category")
	}
	if category.SubjectID != subjectID {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("category %s does not belong to subject %s", categoryID, subjectID))
	}
	return nil
}

func (s *ScoreService) checkEnrollment(ctx context.Context, studentID, classID, termID string) error {
	enrollment, err := s.enrollments.FindActiveByStudent(ctx, studentID, termID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s not enrolled for term", studentID))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.ClassID != classID {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s not in class %s", studentID, classID))
	}
	return nil
}

func (s *ScoreService) invalidateRankings(ctx context.Context, classID, termID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, RankingCachePattern(classID, termID)); err != nil {
		s.logger.Warn("invalidate ranking cache", zap.String("class_id", classID), zap.Error(err))
	}
}
