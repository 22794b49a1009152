package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sekolahku/gradebook-api/internal/models"
)

// GradeScaleRepository handles grade scale persistence.
type GradeScaleRepository struct {
	db *sqlx.DB
}

// NewGradeScaleRepository creates a new grade scale repository.
func NewGradeScaleRepository(db *sqlx.DB) *GradeScaleRepository {
	return &GradeScaleRepository{db: db}
}

// List returns all scales with their bands.
func (r *GradeScaleRepository) List(ctx context.Context) ([]models.GradeScale, error) {
	var scales []models.GradeScale
	if err := r.db.SelectContext(ctx, &scales, "SELECT id, name, is_current, created_at, updated_at FROM grade_scales ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("list grade scales: %w", err)
	}
	for i := range scales {
		bands, err := r.bands(ctx, scales[i].ID)
		if err != nil {
			return nil, err
		}
		scales[i].Bands = bands
	}
	return scales, nil
}

// FindByID returns a scale with its bands.
func (r *GradeScaleRepository) FindByID(ctx context.Context, id string) (*models.GradeScale, error) {
	var scale models.GradeScale
	if err := r.db.GetContext(ctx, &scale, "SELECT id, name, is_current, created_at, updated_at FROM grade_scales WHERE id = $1", id); err != nil {
		return nil, err
	}
	bands, err := r.bands(ctx, scale.ID)
	if err != nil {
		return nil, err
	}
	scale.Bands = bands
	return &scale, nil
}

// FindCurrent returns the scale marked current. sql.ErrNoRows signals that no
// scale is configured, in which case callers fall back to the default scale.
func (r *GradeScaleRepository) FindCurrent(ctx context.Context) (*models.GradeScale, error) {
	var scale models.GradeScale
	if err := r.db.GetContext(ctx, &scale, "SELECT id, name, is_current, created_at, updated_at FROM grade_scales WHERE is_current = TRUE LIMIT 1"); err != nil {
		return nil, err
	}
	bands, err := r.bands(ctx, scale.ID)
	if err != nil {
		return nil, err
	}
	scale.Bands = bands
	return &scale, nil
}

// Create inserts a scale with its bands in a transaction.
func (r *GradeScaleRepository) Create(ctx context.Context, scale *models.GradeScale) error {
	if scale.ID == "" {
		scale.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	scale.CreatedAt = now
	scale.UpdatedAt = now
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.NamedExecContext(ctx, `INSERT INTO grade_scales (id, name, is_current, created_at, updated_at)
        VALUES (:id, :name, :is_current, :created_at, :updated_at)`, scale); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create grade scale: %w", err)
	}
	if err := r.insertBands(ctx, tx, scale); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade scale: %w", err)
	}
	return nil
}

// Update replaces scale name and bands in a transaction.
func (r *GradeScaleRepository) Update(ctx context.Context, scale *models.GradeScale) error {
	scale.UpdatedAt = time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.NamedExecContext(ctx, "UPDATE grade_scales SET name = :name, updated_at = :updated_at WHERE id = :id", scale); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update grade scale: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM grade_scale_bands WHERE scale_id = $1", scale.ID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear grade scale bands: %w", err)
	}
	if err := r.insertBands(ctx, tx, scale); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade scale: %w", err)
	}
	return nil
}

// SetCurrent marks the scale as current, clearing the flag elsewhere.
func (r *GradeScaleRepository) SetCurrent(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE grade_scales SET is_current = FALSE WHERE is_current = TRUE"); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear current grade scale: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE grade_scales SET is_current = TRUE, updated_at = $2 WHERE id = $1", id, time.Now().UTC()); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("set current grade scale: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit current grade scale: %w", err)
	}
	return nil
}

// Delete removes a scale and its bands.
func (r *GradeScaleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM grade_scales WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete grade scale: %w", err)
	}
	return nil
}

func (r *GradeScaleRepository) bands(ctx context.Context, scaleID string) ([]models.GradeScaleBand, error) {
	var bands []models.GradeScaleBand
	if err := r.db.SelectContext(ctx, &bands, "SELECT id, scale_id, letter, min_percentage FROM grade_scale_bands WHERE scale_id = $1 ORDER BY min_percentage DESC", scaleID); err != nil {
		return nil, fmt.Errorf("list grade scale bands: %w", err)
	}
	return bands, nil
}

func (r *GradeScaleRepository) insertBands(ctx context.Context, tx *sqlx.Tx, scale *models.GradeScale) error {
	for i := range scale.Bands {
		if scale.Bands[i].ID == "" {
			scale.Bands[i].ID = uuid.NewString()
		}
		scale.Bands[i].ScaleID = scale.ID
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO grade_scale_bands (id, scale_id, letter, min_percentage)
            VALUES (:id, :scale_id, :letter, :min_percentage)`, scale.Bands[i]); err != nil {
			return fmt.Errorf("insert grade scale band: %w", err)
		}
	}
	return nil
}
