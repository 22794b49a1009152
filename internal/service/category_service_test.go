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

type mockCategoryRepo struct {
	categories map[string]*models.GradeCategory
	nextID     int
}

func (m *mockCategoryRepo) List(ctx context.Context, filter models.GradeCategoryFilter) ([]models.GradeCategory, error) {
	var result []models.GradeCategory
	for _, category := range m.categories {
		if filter.SubjectID != "" && filter.SubjectID != category.SubjectID {
			continue
		}
		result = append(result, *category)
	}
	return result, nil
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id string) (*models.GradeCategory, error) {
	if category, ok := m.categories[id]; ok {
		copied := *category
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.GradeCategory) error {
	if m.categories == nil {
		m.categories = make(map[string]*models.GradeCategory)
	}
	m.nextID++
	category.ID = "cat" + string(rune('0'+m.nextID))
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *models.GradeCategory) error {
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	delete(m.categories, id)
	return nil
}

func TestCategoryCreate(t *testing.T) {
	repo := &mockCategoryRepo{}
	svc := NewCategoryService(repo, validator.New(), zap.NewNop())

	category, err := svc.Create(context.Background(), UpsertCategoryRequest{SubjectID: "math", Name: "Homework", Weight: 40})
	require.NoError(t, err)
	assert.NotEmpty(t, category.ID)
	assert.Equal(t, 40.0, category.Weight)
}

func TestCategoryRejectsNonPositiveWeight(t *testing.T) {
	repo := &mockCategoryRepo{}
	svc := NewCategoryService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), UpsertCategoryRequest{SubjectID: "math", Name: "Homework", Weight: -10})
	assert.Error(t, err)
	assert.Empty(t, repo.categories)
}

func TestCategoryUpdateAndDelete(t *testing.T) {
	repo := &mockCategoryRepo{categories: map[string]*models.GradeCategory{
		"cat1": {ID: "cat1", SubjectID: "math", Name: "Homework", Weight: 40},
	}}
	svc := NewCategoryService(repo, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), "cat1", UpsertCategoryRequest{SubjectID: "math", Name: "Quizzes", Weight: 30})
	require.NoError(t, err)
	assert.Equal(t, "Quizzes", updated.Name)

	require.NoError(t, svc.Delete(context.Background(), "cat1"))
	err = svc.Delete(context.Background(), "cat1")
	assert.Error(t, err)
}
