package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sekolahku/gradebook-api/internal/models"
)

// ClassRepository handles class persistence.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes matching the filter.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	query := "SELECT id, name, grade, track, created_at, updated_at FROM classes WHERE 1=1"
	var args []interface{}
	if filter.Grade != "" {
		query += fmt.Sprintf(" AND grade = $%d", len(args)+1)
		args = append(args, filter.Grade)
	}
	if filter.Track != "" {
		query += fmt.Sprintf(" AND track = $%d", len(args)+1)
		args = append(args, filter.Track)
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}
	query += " ORDER BY name ASC"
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a single class.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	if err := r.db.GetContext(ctx, &class, "SELECT id, name, grade, track, created_at, updated_at FROM classes WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Subjects returns the subjects mapped onto the class curriculum. These
// define the columns of the class gradebook.
func (r *ClassRepository) Subjects(ctx context.Context, classID string) ([]models.Subject, error) {
	var subjects []models.Subject
	const query = `SELECT sub.id, sub.code, sub.name, sub.track, sub.created_at, sub.updated_at
        FROM class_subjects cs
        JOIN subjects sub ON sub.id = cs.subject_id
        WHERE cs.class_id = $1
        ORDER BY sub.name ASC`
	if err := r.db.SelectContext(ctx, &subjects, query, classID); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	return subjects, nil
}
