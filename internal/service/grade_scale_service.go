package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/grading"
	"github.com/sekolahku/gradebook-api/internal/models"
	appErrors "github.com/sekolahku/gradebook-api/pkg/errors"
)

type gradeScaleRepository interface {
	List(ctx context.Context) ([]models.GradeScale, error)
	FindByID(ctx context.Context, id string) (*models.GradeScale, error)
	FindCurrent(ctx context.Context) (*models.GradeScale, error)
	Create(ctx context.Context, scale *models.GradeScale) error
	Update(ctx context.Context, scale *models.GradeScale) error
	SetCurrent(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// GradeScaleBandRequest is one letter threshold in a scale payload.
type GradeScaleBandRequest struct {
	Letter        string  `json:"letter" validate:"required"`
	MinPercentage float64 `json:"min_percentage" validate:"gte=0"`
}

// UpsertGradeScaleRequest creates or replaces a scale definition.
type UpsertGradeScaleRequest struct {
	Name  string                  `json:"name" validate:"required"`
	Bands []GradeScaleBandRequest `json:"bands" validate:"required,min=1,dive"`
}

// GradeScaleService manages configurable letter grade scales.
type GradeScaleService struct {
	repo      gradeScaleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeScaleService constructs GradeScaleService.
func NewGradeScaleService(repo gradeScaleRepository, validate *validator.Validate, logger *zap.Logger) *GradeScaleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeScaleService{repo: repo, validator: validate, logger: logger}
}

// List returns all configured scales.
func (s *GradeScaleService) List(ctx context.Context) ([]models.GradeScale, error) {
	scales, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade scales")
	}
	return scales, nil
}

// Get returns a single scale.
func (s *GradeScaleService) Get(ctx context.Context, id string) (*models.GradeScale, error) {
	scale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade scale not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}
	return scale, nil
}

// Create inserts a new scale.
func (s *GradeScaleService) Create(ctx context.Context, req UpsertGradeScaleRequest) (*models.GradeScale, error) {
	if err := s.validateScale(req); err != nil {
		return nil, err
	}
	scale := &models.GradeScale{Name: req.Name, Bands: bandsFromRequest(req.Bands)}
	if err := s.repo.Create(ctx, scale); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade scale")
	}
	created, err := s.repo.FindByID(ctx, scale.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}
	return created, nil
}

// Update replaces a scale's name and bands.
func (s *GradeScaleService) Update(ctx context.Context, id string, req UpsertGradeScaleRequest) (*models.GradeScale, error) {
	if err := s.validateScale(req); err != nil {
		return nil, err
	}
	scale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade scale not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}
	scale.Name = req.Name
	scale.Bands = bandsFromRequest(req.Bands)
	if err := s.repo.Update(ctx, scale); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade scale")
	}
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}
	return updated, nil
}

// SetCurrent activates the scale for grading.
func (s *GradeScaleService) SetCurrent(ctx context.Context, id string) (*models.GradeScale, error) {
	scale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade scale not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}
	if err := s.repo.SetCurrent(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate grade scale")
	}
	scale.IsCurrent = true
	return scale, nil
}

// Delete removes a scale. The current scale cannot be deleted.
func (s *GradeScaleService) Delete(ctx context.Context, id string) error {
	scale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "grade scale not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}
	if scale.IsCurrent {
		return appErrors.Clone(appErrors.ErrConflict, "cannot delete the current grade scale")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade scale")
	}
	return nil
}

// Current resolves the active scale for grading. When no scale is configured
// the built-in default is returned with an empty name.
func (s *GradeScaleService) Current(ctx context.Context) (grading.Scale, string, error) {
	scale, err := s.repo.FindCurrent(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return grading.DefaultScale(), "", nil
		}
		return grading.Scale{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current grade scale")
	}
	return ToGradingScale(scale), scale.Name, nil
}

// ToGradingScale converts a stored scale into the engine representation.
func ToGradingScale(scale *models.GradeScale) grading.Scale {
	bands := make([]grading.Band, 0, len(scale.Bands))
	for _, band := range scale.Bands {
		bands = append(bands, grading.Band{Letter: band.Letter, Min: band.MinPercentage})
	}
	return grading.NewScale(bands)
}

func (s *GradeScaleService) validateScale(req UpsertGradeScaleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade scale payload")
	}
	seen := make(map[string]struct{}, len(req.Bands))
	for _, band := range req.Bands {
		if _, ok := seen[band.Letter]; ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate letter %s", band.Letter))
		}
		seen[band.Letter] = struct{}{}
	}
	return nil
}

func bandsFromRequest(payload []GradeScaleBandRequest) []models.GradeScaleBand {
	bands := make([]models.GradeScaleBand, len(payload))
	for i, band := range payload {
		bands[i] = models.GradeScaleBand{Letter: band.Letter, MinPercentage: band.MinPercentage}
	}
	return bands
}
