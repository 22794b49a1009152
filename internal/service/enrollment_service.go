package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/models"
	appErrors "github.com/sekolahku/gradebook-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindActiveByStudent(ctx context.Context, studentID, termID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, leftAt *time.Time) error
}

// EnrollRequest registers a student into a class for a term.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	ClassID   string `json:"class_id" validate:"required"`
	TermID    string `json:"term_id" validate:"required"`
}

// EnrollmentService manages cohort membership. A student holds at most one
// active enrollment per term.
type EnrollmentService struct {
	enrollments enrollmentRepository
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(enrollments enrollmentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{enrollments: enrollments, cache: cache, validator: validate, logger: logger}
}

// List returns enrollments matching the filter.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Enroll creates an active enrollment. Enrolling a student who already has
// an active enrollment for the term is a conflict.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	existing, err := s.enrollments.FindActiveByStudent(ctx, req.StudentID, req.TermID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing enrollment")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled for this term")
	}

	enrollment := &models.Enrollment{
		StudentID: req.StudentID,
		ClassID:   req.ClassID,
		TermID:    req.TermID,
		JoinedAt:  time.Now().UTC(),
		Status:    models.EnrollmentStatusActive,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	s.invalidateRankings(ctx, req.ClassID, req.TermID)
	return enrollment, nil
}

// Withdraw closes an enrollment. The student drops out of the cohort so
// derived rankings for the class are invalidated.
func (s *EnrollmentService) Withdraw(ctx context.Context, id string, status models.EnrollmentStatus) error {
	if status != models.EnrollmentStatusTransferred && status != models.EnrollmentStatusLeft {
		return appErrors.Clone(appErrors.ErrValidation, "status must be TRANSFERRED or LEFT")
	}
	enrollment, err := s.enrollments.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return appErrors.Clone(appErrors.ErrConflict, "enrollment is not active")
	}
	now := time.Now().UTC()
	if err := s.enrollments.UpdateStatus(ctx, id, status, &now); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	s.invalidateRankings(ctx, enrollment.ClassID, enrollment.TermID)
	return nil
}

func (s *EnrollmentService) invalidateRankings(ctx context.Context, classID, termID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, RankingCachePattern(classID, termID)); err != nil {
		s.logger.Warn("invalidate ranking cache", zap.String("class_id", classID), zap.Error(err))
	}
}
