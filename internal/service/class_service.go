package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/models"
	appErrors "github.com/sekolahku/gradebook-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Subjects(ctx context.Context, classID string) ([]models.Subject, error)
}

// ClassService provides read access to classes and their curricula.
type ClassService struct {
	classes classRepository
	logger  *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(classes classRepository, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, logger: logger}
}

// List returns classes matching the filter.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	classes, err := s.classes.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Get returns a single class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get class")
	}
	return class, nil
}

// Subjects returns the subjects mapped to a class curriculum.
func (s *ClassService) Subjects(ctx context.Context, classID string) ([]models.Subject, error) {
	if _, err := s.Get(ctx, classID); err != nil {
		return nil, err
	}
	subjects, err := s.classes.Subjects(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class subjects")
	}
	return subjects, nil
}
