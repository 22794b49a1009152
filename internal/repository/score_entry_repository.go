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

// ScoreEntryRepository handles score entry persistence.
type ScoreEntryRepository struct {
	db *sqlx.DB
}

// NewScoreEntryRepository creates a new score entry repository.
func NewScoreEntryRepository(db *sqlx.DB) *ScoreEntryRepository {
	return &ScoreEntryRepository{db: db}
}

// List returns score entries matching the filter.
func (r *ScoreEntryRepository) List(ctx context.Context, filter models.ScoreEntryFilter) ([]models.ScoreEntry, error) {
	query := `SELECT s.id, s.student_id, s.subject_id, s.category_id, s.class_id, s.term_id, s.title, s.score, s.max_score, s.created_at, s.updated_at, c.name AS category_name
        FROM score_entries s
        JOIN grade_categories c ON c.id = s.category_id
        WHERE 1=1`
	var args []interface{}
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND s.student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		query += fmt.Sprintf(" AND s.subject_id = $%d", len(args)+1)
		args = append(args, filter.SubjectID)
	}
	if filter.CategoryID != "" {
		query += fmt.Sprintf(" AND s.category_id = $%d", len(args)+1)
		args = append(args, filter.CategoryID)
	}
	if filter.ClassID != "" {
		query += fmt.Sprintf(" AND s.class_id = $%d", len(args)+1)
		args = append(args, filter.ClassID)
	}
	if filter.TermID != "" {
		query += fmt.Sprintf(" AND s.term_id = $%d", len(args)+1)
		args = append(args, filter.TermID)
	}
	query += " ORDER BY s.updated_at DESC"
	var entries []models.ScoreEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list score entries: %w", err)
	}
	return entries, nil
}

// FindByID returns a single score entry.
func (r *ScoreEntryRepository) FindByID(ctx context.Context, id string) (*models.ScoreEntry, error) {
	const query = `SELECT id, student_id, subject_id, category_id, class_id, term_id, title, score, max_score, created_at, updated_at
        FROM score_entries WHERE id = $1`
	var entry models.ScoreEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Upsert inserts or updates a score entry.
func (r *ScoreEntryRepository) Upsert(ctx context.Context, entry *models.ScoreEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	const query = `INSERT INTO score_entries (id, student_id, subject_id, category_id, class_id, term_id, title, score, max_score, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :category_id, :class_id, :term_id, :title, :score, :max_score, :created_at, :updated_at)
        ON CONFLICT (id)
        DO UPDATE SET title = EXCLUDED.title, score = EXCLUDED.score, max_score = EXCLUDED.max_score, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert score entry: %w", err)
	}
	return nil
}

// BulkUpsert inserts or updates multiple score entries in a transaction.
func (r *ScoreEntryRepository) BulkUpsert(ctx context.Context, entries []models.ScoreEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
		entries[i].UpdatedAt = now
		const query = `INSERT INTO score_entries (id, student_id, subject_id, category_id, class_id, term_id, title, score, max_score, created_at, updated_at)
                VALUES (:id, :student_id, :subject_id, :category_id, :class_id, :term_id, :title, :score, :max_score, :created_at, :updated_at)
                ON CONFLICT (id)
                DO UPDATE SET title = EXCLUDED.title, score = EXCLUDED.score, max_score = EXCLUDED.max_score, updated_at = EXCLUDED.updated_at`
		if _, err := tx.NamedExecContext(ctx, query, entries[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert score entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit score entries: %w", err)
	}
	return nil
}

// FetchByStudents returns score entries for a class+term keyed by student ID.
func (r *ScoreEntryRepository) FetchByStudents(ctx context.Context, studentIDs []string, termID string) (map[string][]models.ScoreEntry, error) {
	if len(studentIDs) == 0 {
		return map[string][]models.ScoreEntry{}, nil
	}
	placeholders := make([]string, len(studentIDs))
	args := make([]interface{}, len(studentIDs)+1)
	for i, id := range studentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	args[len(args)-1] = termID
	query := fmt.Sprintf(`SELECT s.id, s.student_id, s.subject_id, s.category_id, s.class_id, s.term_id, s.title, s.score, s.max_score, s.created_at, s.updated_at, c.name AS category_name
        FROM score_entries s
        JOIN grade_categories c ON c.id = s.category_id
        WHERE s.student_id IN (%s) AND s.term_id = $%d`, strings.Join(placeholders, ","), len(args))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch score entries: %w", err)
	}
	defer rows.Close()
	result := make(map[string][]models.ScoreEntry, len(studentIDs))
	for rows.Next() {
		var entry models.ScoreEntry
		if err := rows.StructScan(&entry); err != nil {
			return nil, fmt.Errorf("scan score entry: %w", err)
		}
		result[entry.StudentID] = append(result[entry.StudentID], entry)
	}
	return result, nil
}

// Delete removes a score entry.
func (r *ScoreEntryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM score_entries WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete score entry: %w", err)
	}
	return nil
}
