package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/models"
)

type mockScoreEntryRepo struct {
	stored map[string]models.ScoreEntry
}

func (m *mockScoreEntryRepo) List(ctx context.Context, filter models.ScoreEntryFilter) ([]models.ScoreEntry, error) {
	var result []models.ScoreEntry
	for _, entry := range m.stored {
		result = append(result, entry)
	}
	return result, nil
}

func (m *mockScoreEntryRepo) FindByID(ctx context.Context, id string) (*models.ScoreEntry, error) {
	if entry, ok := m.stored[id]; ok {
		return &entry, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScoreEntryRepo) Upsert(ctx context.Context, entry *models.ScoreEntry) error {
	if m.stored == nil {
		m.stored = make(map[string]models.ScoreEntry)
	}
	if entry.ID == "" {
		entry.ID = "generated"
	}
	m.stored[entry.ID] = *entry
	return nil
}

func (m *mockScoreEntryRepo) BulkUpsert(ctx context.Context, entries []models.ScoreEntry) error {
	for i := range entries {
		_ = m.Upsert(ctx, &entries[i])
	}
	return nil
}

func (m *mockScoreEntryRepo) Delete(ctx context.Context, id string) error {
	delete(m.stored, id)
	return nil
}

type mockCategoryReader struct {
	categories map[string]*models.GradeCategory
}

func (m *mockCategoryReader) FindByID(ctx context.Context, id string) (*models.GradeCategory, error) {
	if category, ok := m.categories[id]; ok {
		return category, nil
	}
	return nil, sql.ErrNoRows
}

type mockEnrollmentChecker struct {
	enrollments map[string]*models.Enrollment
}

func (m *mockEnrollmentChecker) FindActiveByStudent(ctx context.Context, studentID, termID string) (*models.Enrollment, error) {
	if enrollment, ok := m.enrollments[studentID]; ok && enrollment.TermID == termID {
		return enrollment, nil
	}
	return nil, sql.ErrNoRows
}

func newScoreFixture() (*ScoreService, *mockScoreEntryRepo) {
	repo := &mockScoreEntryRepo{}
	categories := &mockCategoryReader{categories: map[string]*models.GradeCategory{
		"cat1": {ID: "cat1", SubjectID: "math", Name: "Homework", Weight: 40},
	}}
	enrollments := &mockEnrollmentChecker{enrollments: map[string]*models.Enrollment{
		"stu1": {ID: "en1", StudentID: "stu1", ClassID: "class", TermID: "term", Status: models.EnrollmentStatusActive},
	}}
	svc := NewScoreService(repo, categories, enrollments, nil, validator.New(), zap.NewNop())
	return svc, repo
}

func TestScoreUpsert(t *testing.T) {
	svc, repo := newScoreFixture()

	entry, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID: "stu1", SubjectID: "math", CategoryID: "cat1",
		ClassID: "class", TermID: "term", Title: "HW 1", Score: 9, MaxScore: 10,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Len(t, repo.stored, 1)
}

func TestScoreUpsertRejectsZeroMaxScore(t *testing.T) {
	svc, repo := newScoreFixture()

	_, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID: "stu1", SubjectID: "math", CategoryID: "cat1",
		ClassID: "class", TermID: "term", Score: 5, MaxScore: 0,
	})
	assert.Error(t, err)
	assert.Empty(t, repo.stored)
}

func TestScoreUpsertRejectsForeignCategory(t *testing.T) {
	svc, repo := newScoreFixture()

	_, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID: "stu1", SubjectID: "lit", CategoryID: "cat1",
		ClassID: "class", TermID: "term", Score: 5, MaxScore: 10,
	})
	assert.Error(t, err)
	assert.Empty(t, repo.stored)
}

func TestScoreBulkUpsertAtomicAborts(t *testing.T) {
	svc, repo := newScoreFixture()

	_, err := svc.BulkUpsert(context.Background(), BulkScoresRequest{
		ClassID: "class", TermID: "term", Mode: "atomic",
		Items: []BulkScoreItem{
			{StudentID: "stu1", SubjectID: "math", CategoryID: "cat1", Score: 8, MaxScore: 10},
			{StudentID: "ghost", SubjectID: "math", CategoryID: "cat1", Score: 7, MaxScore: 10},
		},
	})
	assert.Error(t, err)
	assert.Empty(t, repo.stored)
}

func TestScoreBulkUpsertPartialCollectsFailures(t *testing.T) {
	svc, repo := newScoreFixture()

	result, err := svc.BulkUpsert(context.Background(), BulkScoresRequest{
		ClassID: "class", TermID: "term", Mode: "partialOnError",
		Items: []BulkScoreItem{
			{StudentID: "stu1", SubjectID: "math", CategoryID: "cat1", Score: 8, MaxScore: 10},
			{StudentID: "ghost", SubjectID: "math", CategoryID: "cat1", Score: 7, MaxScore: 10},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "ghost", result.Failures[0].StudentID)
	assert.Len(t, repo.stored, 1)
}

func TestScoreDelete(t *testing.T) {
	svc, repo := newScoreFixture()
	repo.stored = map[string]models.ScoreEntry{
		"s1": {ID: "s1", StudentID: "stu1", ClassID: "class", TermID: "term"},
	}

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	assert.Empty(t, repo.stored)

	err := svc.Delete(context.Background(), "missing")
	assert.Error(t, err)
}
