package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/models"
	appErrors "github.com/sekolahku/gradebook-api/pkg/errors"
)

type gradeCategoryRepository interface {
	List(ctx context.Context, filter models.GradeCategoryFilter) ([]models.GradeCategory, error)
	FindByID(ctx context.Context, id string) (*models.GradeCategory, error)
	Create(ctx context.Context, category *models.GradeCategory) error
	Update(ctx context.Context, category *models.GradeCategory) error
	Delete(ctx context.Context, id string) error
}

// UpsertCategoryRequest creates or updates a grade category. Weight is a
// relative share, not a percentage: categories for a subject do not need to
// sum to any particular total.
type UpsertCategoryRequest struct {
	SubjectID string  `json:"subject_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Weight    float64 `json:"weight" validate:"required"`
}

// CategoryService manages grade categories.
type CategoryService struct {
	categories gradeCategoryRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCategoryService constructs CategoryService.
func NewCategoryService(categories gradeCategoryRepository, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{categories: categories, validator: validate, logger: logger}
}

// List returns grade categories matching the filter.
func (s *CategoryService) List(ctx context.Context, filter models.GradeCategoryFilter) ([]models.GradeCategory, error) {
	categories, err := s.categories.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade categories")
	}
	return categories, nil
}

// Get returns a single grade category.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.GradeCategory, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get grade category")
	}
	return category, nil
}

// Create adds a new grade category.
func (s *CategoryService) Create(ctx context.Context, req UpsertCategoryRequest) (*models.GradeCategory, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	category := &models.GradeCategory{
		SubjectID: req.SubjectID,
		Name:      req.Name,
		Weight:    req.Weight,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade category")
	}
	return category, nil
}

// Update modifies an existing grade category.
func (s *CategoryService) Update(ctx context.Context, id string, req UpsertCategoryRequest) (*models.GradeCategory, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	category.SubjectID = req.SubjectID
	category.Name = req.Name
	category.Weight = req.Weight
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade category")
	}
	return category, nil
}

// Delete removes a grade category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade category")
	}
	return nil
}

func (s *CategoryService) validateRequest(req UpsertCategoryRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	if req.Weight <= 0 {
		return appErrors.Clone(appErrors.ErrInvalidWeight, "category weight must be positive")
	}
	return nil
}
