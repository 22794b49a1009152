package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sekolahku/gradebook-api/internal/models"
)

// CategoryRepository handles grade category persistence.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns categories matching the filter.
func (r *CategoryRepository) List(ctx context.Context, filter models.GradeCategoryFilter) ([]models.GradeCategory, error) {
	query := "SELECT id, subject_id, name, weight, created_at, updated_at FROM grade_categories WHERE 1=1"
	var args []interface{}
	if filter.SubjectID != "" {
		query += fmt.Sprintf(" AND subject_id = $%d", len(args)+1)
		args = append(args, filter.SubjectID)
	}
	query += " ORDER BY weight DESC, name ASC"
	var categories []models.GradeCategory
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("list grade categories: %w", err)
	}
	return categories, nil
}

// FindByID returns a single category.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.GradeCategory, error) {
	var category models.GradeCategory
	if err := r.db.GetContext(ctx, &category, "SELECT id, subject_id, name, weight, created_at, updated_at FROM grade_categories WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &category, nil
}

// ListBySubjects returns categories for the given subjects keyed by subject ID.
func (r *CategoryRepository) ListBySubjects(ctx context.Context, subjectIDs []string) (map[string][]models.GradeCategory, error) {
	if len(subjectIDs) == 0 {
		return map[string][]models.GradeCategory{}, nil
	}
	placeholders := make([]string, len(subjectIDs))
	args := make([]interface{}, len(subjectIDs))
	for i, id := range subjectIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf("SELECT id, subject_id, name, weight, created_at, updated_at FROM grade_categories WHERE subject_id IN (%s) ORDER BY weight DESC", strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch grade categories: %w", err)
	}
	defer rows.Close()
	result := make(map[string][]models.GradeCategory, len(subjectIDs))
	for rows.Next() {
		var category models.GradeCategory
		if err := rows.StructScan(&category); err != nil {
			return nil, fmt.Errorf("scan grade category: %w", err)
		}
		result[category.SubjectID] = append(result[category.SubjectID], category)
	}
	return result, nil
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.GradeCategory) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now
	const query = `INSERT INTO grade_categories (id, subject_id, name, weight, created_at, updated_at)
        VALUES (:id, :subject_id, :name, :weight, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create grade category: %w", err)
	}
	return nil
}

// Update modifies an existing category.
func (r *CategoryRepository) Update(ctx context.Context, category *models.GradeCategory) error {
	category.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grade_categories SET name = :name, weight = :weight, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("update grade category: %w", err)
	}
	return nil
}

// Delete removes a category.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM grade_categories WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete grade category: %w", err)
	}
	return nil
}
